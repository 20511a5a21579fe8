package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishLinkVisited logs link.visited events.
func (p *StubPublisher) PublishLinkVisited(_ context.Context, event domain.LinkVisitedEvent) error {
	p.logger.Info("stub event published",
		zap.String("event_type", eventTypeLinkVisited),
		zap.String("link_slug", event.LinkSlug),
		zap.Time("at", event.At),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
