// internal/cli/root.go
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scheme-assist/internal/catalog"
	"scheme-assist/internal/common/config"
	"scheme-assist/internal/common/database"
	"scheme-assist/internal/common/logger"
)

const app = "scheme-cli"

// backends are pinged a few times only; the CLI is interactive.
var cliRetryPolicy = database.RetryPolicy{Attempts: 3, InitialDelay: 500 * time.Millisecond}

type cli struct {
	v       *viper.Viper
	cfgFile string
	log     logger.Logger
}

// NewRootCommand builds a fresh command tree. Each call has its own flag and
// viper state so commands can be executed repeatedly in tests.
func NewRootCommand() *cobra.Command {
	c := &cli{v: viper.New(), log: logger.NewNoOpLogger()}

	root := &cobra.Command{
		Use:           app,
		Short:         "scheme-cli scores citizen profiles against the government scheme catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "info"
			if c.v.GetBool("debug") {
				level = "debug"
			}
			format := "console"
			if c.v.GetBool("json") {
				format = "json"
			}
			c.log = logger.NewZapAdapter(logger.NewWithOutput(level, format, "stderr"))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is configs/config.yaml)")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = c.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = c.v.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(
		c.newReportCommand(),
		c.newStatsCommand(),
		c.newCatalogCommand(),
		c.newRegistryCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfgFile != "" {
		return config.LoadFromFile(c.cfgFile)
	}
	return config.Load()
}

// openProvider returns a file provider for catalogPath, or the configured
// provider when catalogPath is empty. cfg is nil in the first case.
func (c *cli) openProvider(ctx context.Context, catalogPath string) (catalog.Provider, *config.Config, func(), error) {
	if catalogPath != "" {
		return catalog.NewFileProvider(catalogPath, catalog.DefaultSchema()), nil, func() {}, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	conns, err := database.Connect(ctx, cfg, cfg.Catalog.Source, cliRetryPolicy, c.log)
	if err != nil {
		return nil, nil, nil, err
	}

	provider, err := catalog.New(cfg, catalog.DepsFrom(conns))
	if err != nil {
		conns.Close()
		return nil, nil, nil, err
	}
	return provider, cfg, conns.Close, nil
}
