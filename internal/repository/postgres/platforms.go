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

// PlatformRepository implements port.PlatformRepository for PostgreSQL.
type PlatformRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPlatformRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewPlatformRepository(exec pgExecutor) *PlatformRepository {
	return &PlatformRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a platform record.
func (r *PlatformRepository) Create(ctx context.Context, platform domain.Platform) error {
	sql, args, err := r.builder.Insert("platforms").
		Columns("id", "name", "api_key_hash").
		Values(platform.ID, platform.Name, platform.APIKeyHash).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert platform sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert platform: %w", err)
	}

	return nil
}

// GetByID returns a platform by identifier.
func (r *PlatformRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Platform, error) {
	sql, args, err := r.builder.
		Select("id", "name", "api_key_hash").
		From("platforms").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select platform sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, sql, args...)

	var platform domain.Platform
	if err := row.Scan(&platform.ID, &platform.Name, &platform.APIKeyHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan platform: %w", err)
	}

	return &platform, nil
}

// List returns all platforms ordered by name.
func (r *PlatformRepository) List(ctx context.Context) ([]domain.Platform, error) {
	sql, args, err := r.builder.
		Select("id", "name", "api_key_hash").
		From("platforms").
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list platforms sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query platforms: %w", err)
	}
	defer rows.Close()

	var platforms []domain.Platform
	for rows.Next() {
		var platform domain.Platform
		if err := rows.Scan(&platform.ID, &platform.Name, &platform.APIKeyHash); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		platforms = append(platforms, platform)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate platforms: %w", err)
	}

	return platforms, nil
}

// UpdateAPIKeyHash replaces the stored key hash for an explicit reset.
func (r *PlatformRepository) UpdateAPIKeyHash(ctx context.Context, id uuid.UUID, apiKeyHash string) error {
	sql, args, err := r.builder.Update("platforms").
		Set("api_key_hash", apiKeyHash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update platform sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update platform api key hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a platform.
func (r *PlatformRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.builder.Delete("platforms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete platform sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.PlatformRepository = (*PlatformRepository)(nil)
