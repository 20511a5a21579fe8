package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
)

// PlatformRepository deals with platform storage.
type PlatformRepository interface {
	Create(ctx context.Context, platform domain.Platform) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Platform, error)
	List(ctx context.Context) ([]domain.Platform, error)
	UpdateAPIKeyHash(ctx context.Context, id uuid.UUID, apiKeyHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
