package domain

import (
	"time"

	"github.com/google/uuid"
)

// DashboardLoginToken is the persisted credential behind one dashboard browser
// session. Rows are never updated; they expire logically once created_at falls
// outside the configured window.
type DashboardLoginToken struct {
	ID        uuid.UUID
	TokenHash string
	CreatedAt time.Time
}

// Active reports whether the token is still inside its lifetime at the
// supplied moment. The comparison is strictly created_at > at-ttl, so a token
// created exactly at the barrier instant is already expired.
func (t DashboardLoginToken) Active(at time.Time, ttl time.Duration) bool {
	return t.CreatedAt.After(at.Add(-ttl))
}
