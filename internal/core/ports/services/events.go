package services

import (
	"context"

	"github.com/michaelemmanuel16/ecommerce-cod-admin-sub005/internal/core/domain"
)

// EventPublisher receives domain events for the notification layer. A
// publish failure never fails the business operation that emitted it.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
