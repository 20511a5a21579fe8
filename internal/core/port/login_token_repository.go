package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
)

// LoginTokenRepository deals with dashboard login token storage. Rows are
// insert-only; expiry is decided by the caller against created_at.
type LoginTokenRepository interface {
	Create(ctx context.Context, token domain.DashboardLoginToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DashboardLoginToken, error)
}
