package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
)

// VisitRepository implements port.VisitRepository for PostgreSQL.
type VisitRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewVisitRepository(exec pgExecutor) *VisitRepository {
	return &VisitRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends a visit row. Headers are stored as a JSONB document.
func (r *VisitRepository) Create(ctx context.Context, visit domain.LinkVisit) error {
	headers, err := json.Marshal(visit.Headers)
	if err != nil {
		return fmt.Errorf("marshal visit headers: %w", err)
	}

	sql, args, err := r.builder.Insert("link_visits").
		Columns("link_slug", "visited_at", "headers", "ip_address").
		Values(visit.LinkSlug, visit.At, headers, visit.IPAddress).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert visit sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return nil
}

var _ port.VisitRepository = (*VisitRepository)(nil)
