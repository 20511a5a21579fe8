package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

// LinkRepository implements port.LinkRepository for PostgreSQL.
type LinkRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewLinkRepository(exec pgExecutor) *LinkRepository {
	return &LinkRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a link. A slug collision surfaces as repository.ErrConflict
// so callers can retry with a fresh slug.
func (r *LinkRepository) Create(ctx context.Context, link domain.Link) error {
	sql, args, err := r.builder.Insert("links").
		Columns("id", "platform_id", "slug", "url", "metadata", "created_at").
		Values(link.ID, link.PlatformID, link.Slug, link.URL, link.Metadata, link.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert link sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert link: %w", err)
	}

	return nil
}

// GetBySlug returns the link registered under slug.
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	sql, args, err := r.builder.
		Select("id", "platform_id", "slug", "url", "metadata", "created_at").
		From("links").
		Where(squirrel.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select link sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, sql, args...)

	var link domain.Link
	if err := row.Scan(&link.ID, &link.PlatformID, &link.Slug, &link.URL, &link.Metadata, &link.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan link: %w", err)
	}

	return &link, nil
}

var _ port.LinkRepository = (*LinkRepository)(nil)
