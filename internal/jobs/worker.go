package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/platform/config"
	"github.com/hibiken/asynq"
)

// Worker wraps the asynq server and the cron scheduler that feeds it.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewWorker builds the worker with every maintenance task registered and the
// cron schedules from config wired to their tasks.
func NewWorker(cfg *config.Config, deps TaskDeps) (*Worker, error) {
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeReconcile, deps.HandleReconcileTask)
	mux.HandleFunc(TaskTypeBackfill, deps.HandleBackfillTask)
	mux.HandleFunc(TaskTypeAging, deps.HandleAgingTask)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})

	backfillTask, err := NewBackfillTask(BackfillPayload{Limit: 500})
	if err != nil {
		return nil, fmt.Errorf("build backfill task: %w", err)
	}

	schedules := []struct {
		spec string
		task *asynq.Task
	}{
		{cfg.ReconcileSchedule, NewReconcileTask()},
		{cfg.BackfillSchedule, backfillTask},
		{cfg.AgingSchedule, NewAgingTask()},
	}
	for _, s := range schedules {
		if s.spec == "" {
			continue
		}
		if _, err := scheduler.Register(s.spec, s.task, asynq.Queue(QueueDefault)); err != nil {
			return nil, fmt.Errorf("register schedule %q for %s: %w", s.spec, s.task.Type(), err)
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler}, nil
}

// Run starts the scheduler and the server, blocking until the context is
// cancelled or the server fails.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.scheduler.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}
