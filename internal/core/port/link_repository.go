package port

import (
	"context"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
)

// LinkRepository deals with link storage.
type LinkRepository interface {
	Create(ctx context.Context, link domain.Link) error
	GetBySlug(ctx context.Context, slug string) (*domain.Link, error)
}

// VisitRepository persists redirect deliveries.
type VisitRepository interface {
	Create(ctx context.Context, visit domain.LinkVisit) error
}
