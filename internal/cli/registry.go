// internal/cli/registry.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scheme-assist/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func (c *cli) newRegistryCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and maintain the activity registry",
	}
	cmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "activity registry file")

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check ids, task types, timeouts and schemas of every activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry %s is invalid:\n%w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry OK: %d activities (version %s)\n", len(reg.Activities), reg.Version)
			return nil
		},
	}

	var id, field, value string
	update := &cobra.Command{
		Use:     "update",
		Short:   "Update one field of an activity",
		Example: `  scheme-cli registry update --id scheme.report.build --field status --value implemented`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("load registry: %w", err)
			}
			if err := reg.UpdateField(id, field, value); err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("update leaves registry invalid: %w", err)
			}
			if err := reg.Save(path); err != nil {
				return err
			}

			c.log.Info("activity updated", map[string]interface{}{"id": id, "field": field})
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s of %s\n", field, id)
			return nil
		},
	}
	update.Flags().StringVar(&id, "id", "", "activity ID")
	update.Flags().StringVar(&field, "field", "", "status, version, displayName, description, category, timeout or retries")
	update.Flags().StringVar(&value, "value", "", "new value")
	_ = update.MarkFlagRequired("id")
	_ = update.MarkFlagRequired("field")
	_ = update.MarkFlagRequired("value")

	cmd.AddCommand(validate, update)
	return cmd
}
