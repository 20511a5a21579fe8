package port

import (
	"context"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishLinkVisited(ctx context.Context, event domain.LinkVisitedEvent) error
}
