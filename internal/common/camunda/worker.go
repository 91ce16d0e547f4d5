// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"scheme-assist/internal/common/config"
	"scheme-assist/internal/common/logger"
)

// Workers tracks the job workers opened by StartWorker.
type Workers struct {
	client  zbc.Client
	logger  logger.Logger
	workers []worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{client: client, logger: log}
}

// Start opens a job worker for taskType unless it is disabled in config.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jw := w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		PollInterval(time.Second).
		Open()
	w.workers = append(w.workers, jw)

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Count returns the number of open workers.
func (w *Workers) Count() int {
	return len(w.workers)
}

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	for _, jw := range w.workers {
		jw.Close()
		jw.AwaitClose()
	}
	w.logger.Info("workers stopped", map[string]interface{}{"count": len(w.workers)})
}
