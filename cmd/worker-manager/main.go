// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"scheme-assist/internal/api"
	"scheme-assist/internal/catalog"
	commonaws "scheme-assist/internal/common/aws"
	"scheme-assist/internal/common/camunda"
	"scheme-assist/internal/common/config"
	"scheme-assist/internal/common/database"
	"scheme-assist/internal/common/logger"
	"scheme-assist/internal/common/observability"
	"scheme-assist/internal/eligibility"
	bsr "scheme-assist/internal/workers/scheme/build-scheme-report"
	nsr "scheme-assist/internal/workers/scheme/notify-scheme-report"
	"scheme-assist/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("catalogSource", cfg.Catalog.Source),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Catalog backend ---
	conns, err := database.Connect(ctx, cfg, cfg.Catalog.Source, database.DefaultRetryPolicy, log)
	if err != nil {
		zapLog.Fatal("catalog backend failed after retries", zap.Error(err))
	}
	defer conns.Close()

	provider, err := catalog.New(cfg, catalog.DepsFrom(conns))
	if err != nil {
		zapLog.Fatal("catalog provider init failed", zap.Error(err))
	}

	builder := eligibility.NewBuilder(provider, log,
		eligibility.WithMinScore(cfg.Recommendation.MinScore),
		eligibility.WithRecorder(obs),
	)

	// --- Zeebe workers ---
	var (
		zeebe   *camunda.Client
		workers *camunda.Workers
	)
	if cfg.Camunda.Enabled {
		err = database.RetryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		workers, err = startWorkers(ctx, cfg, zeebe, builder, log)
		if err != nil {
			zapLog.Fatal("worker registration failed", zap.Error(err))
		}
		zapLog.Info("workers registered", zap.Int("count", workers.Count()))
	}

	// --- HTTP API ---
	handler := api.NewHandler(builder, provider, log,
		config.GetDuration(cfg.Server.RequestTimeout), cfg.Recommendation.MarkdownLimit)
	e := api.NewRouter(cfg.Server, handler, log)

	go func() {
		zapLog.Info("HTTP server starting", zap.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown error", zap.Error(err))
	}

	if workers != nil {
		workers.Close()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// startWorkers opens a job worker per registered task type, each validating
// its variables against the registry input schema.
func startWorkers(ctx context.Context, cfg *config.Config, zeebe *camunda.Client, builder *eligibility.Builder, log logger.Logger) (*camunda.Workers, error) {
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	buildSchema, err := reg.InputSchema(bsr.TaskType)
	if err != nil {
		return nil, err
	}
	notifySchema, err := reg.InputSchema(nsr.TaskType)
	if err != nil {
		return nil, err
	}

	workers := camunda.NewWorkers(zeebe.GetClient(), log)

	if config.IsWorkerEnabled(cfg, bsr.TaskType) {
		buildCfg := config.GetWorkerConfig(cfg, bsr.TaskType)
		build := bsr.NewHandler(bsr.LoadConfig(buildCfg), builder, buildSchema, log)
		workers.Start(bsr.TaskType, buildCfg, build.Handle)
	}

	if config.IsWorkerEnabled(cfg, nsr.TaskType) {
		notifyCfg := config.GetWorkerConfig(cfg, nsr.TaskType)
		awsCfg, err := commonaws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, err
		}
		notify := nsr.NewHandler(nsr.LoadConfig(cfg, notifyCfg),
			commonaws.NewSESClient(awsCfg), commonaws.NewSNSClient(awsCfg), notifySchema, log)
		workers.Start(nsr.TaskType, notifyCfg, notify.Handle)
	}

	return workers, nil
}
