package services

import (
	"context"
	"log/slog"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
	portssvc "github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/ports/services"
	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/middleware"
)

// logEventPublisher emits domain events as structured log lines. The
// notification fan-out (email, dashboards) consumes these downstream; a
// publish can never fail the business operation that emitted it.
type logEventPublisher struct{}

// NewLogEventPublisher creates an EventPublisher backed by the request logger.
func NewLogEventPublisher() portssvc.EventPublisher {
	return &logEventPublisher{}
}

var _ portssvc.EventPublisher = (*logEventPublisher)(nil)

func (p *logEventPublisher) Publish(ctx context.Context, event domain.Event) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("domain event",
		slog.String("event_type", string(event.Type)),
		slog.Time("occurred_at", event.OccurredAt),
		slog.Int64("subject_id", event.SubjectID),
		slog.String("account_code", event.AccountCode),
		slog.String("amount", event.Amount.String()),
		slog.String("actor_id", event.ActorID),
		slog.String("detail", event.Detail),
	)
}
