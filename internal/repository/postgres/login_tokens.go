package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

// LoginTokenRepository implements port.LoginTokenRepository for PostgreSQL.
// Rows are insert-only; they age out of relevance instead of being updated.
type LoginTokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLoginTokenRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewLoginTokenRepository(exec pgExecutor) *LoginTokenRepository {
	return &LoginTokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a dashboard login token record.
func (r *LoginTokenRepository) Create(ctx context.Context, token domain.DashboardLoginToken) error {
	sql, args, err := r.builder.Insert("dashboard_login_tokens").
		Columns("id", "token_hash", "created_at").
		Values(token.ID, token.TokenHash, token.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert login token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert login token: %w", err)
	}

	return nil
}

// GetByID returns a login token row by identifier. Expiry is a policy
// decision and stays with the caller.
func (r *LoginTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DashboardLoginToken, error) {
	sql, args, err := r.builder.
		Select("id", "token_hash", "created_at").
		From("dashboard_login_tokens").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select login token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, sql, args...)

	var token domain.DashboardLoginToken
	if err := row.Scan(&token.ID, &token.TokenHash, &token.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan login token: %w", err)
	}

	return &token, nil
}

var _ port.LoginTokenRepository = (*LoginTokenRepository)(nil)
