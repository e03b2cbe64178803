package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue all scheduled maintenance jobs run on.
	QueueDefault = "default"

	// TaskTypeReconcile recomputes cached account balances from the ledger.
	TaskTypeReconcile = "gl:reconcile"
	// TaskTypeBackfill recognizes delivered orders that never produced an entry.
	TaskTypeBackfill = "gl:backfill"
	// TaskTypeAging logs the outstanding-collection aging report per agent.
	TaskTypeAging = "collections:aging"
)

// BackfillPayload bounds one scheduled backfill pass.
type BackfillPayload struct {
	Limit int `json:"limit"`
}

// NewReconcileTask constructs the scheduled balance reconciliation task.
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReconcile, nil)
}

// NewBackfillTask constructs the scheduled revenue backfill task.
func NewBackfillTask(payload BackfillPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeBackfill, data), nil
}

// NewAgingTask constructs the scheduled aging report task.
func NewAgingTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAging, nil)
}

// TaskDeps carries the services and identity the job handlers run with.
// Scheduled runs are always live, never dry-run, and are stamped with the
// system user.
type TaskDeps struct {
	Reconciliation portssvc.ReconciliationSvcFacade
	Revenue        portssvc.RevenueSvcFacade
	Collection     portssvc.CollectionSvcFacade
	SystemUserID   string
	Logger         *slog.Logger
}

func (d TaskDeps) jobCtx(ctx context.Context, taskType string) (context.Context, *slog.Logger) {
	logger := d.Logger.With(slog.String("task", taskType), slog.String("actor_id", d.SystemUserID))
	return middleware.WithLogger(ctx, logger), logger
}

// HandleReconcileTask processes TaskTypeReconcile tasks.
func (d TaskDeps) HandleReconcileTask(ctx context.Context, t *asynq.Task) error {
	ctx, logger := d.jobCtx(ctx, TaskTypeReconcile)

	report, err := d.Reconciliation.ReconcileBalances(ctx, false, d.SystemUserID)
	if err != nil {
		logger.Error("Scheduled balance reconciliation failed", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Scheduled balance reconciliation completed",
		slog.Int("checked", report.CheckedAccounts),
		slog.Int("corrections", len(report.Corrections)))
	return nil
}

// HandleBackfillTask processes TaskTypeBackfill tasks.
func (d TaskDeps) HandleBackfillTask(ctx context.Context, t *asynq.Task) error {
	var payload BackfillPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	ctx, logger := d.jobCtx(ctx, TaskTypeBackfill)

	report, err := d.Revenue.BackfillMissing(ctx, false, payload.Limit, d.SystemUserID)
	if err != nil {
		logger.Error("Scheduled revenue backfill failed", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Scheduled revenue backfill completed",
		slog.Int("scanned", report.Scanned),
		slog.Int("recognized", report.Recognized),
		slog.Int("skipped", report.Skipped),
		slog.String("recovered_revenue", report.RecoveredRevenue.String()))
	return nil
}

// HandleAgingTask processes TaskTypeAging tasks. The report is written to the
// log so operators see stale agent balances without polling the endpoint.
func (d TaskDeps) HandleAgingTask(ctx context.Context, t *asynq.Task) error {
	ctx, logger := d.jobCtx(ctx, TaskTypeAging)

	report, err := d.Collection.AgingReport(ctx)
	if err != nil {
		logger.Error("Scheduled aging report failed", slog.String("error", err.Error()))
		return err
	}

	for _, agent := range report {
		logger.Info("Agent collections outstanding",
			slog.Int64("agent_id", agent.AgentID),
			slog.String("total_outstanding", agent.TotalOutstanding.String()),
			slog.Time("oldest_collection", agent.OldestCollection))
	}
	logger.Info("Scheduled aging report completed", slog.Int("agents", len(report)))
	return nil
}
