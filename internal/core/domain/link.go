package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Link maps a slug to a destination URL on behalf of a platform.
type Link struct {
	ID         uuid.UUID
	PlatformID uuid.UUID
	Slug       string
	URL        string
	Metadata   json.RawMessage
	CreatedAt  time.Time
}

// LinkVisit records a single redirect delivery for a slug.
type LinkVisit struct {
	LinkSlug  string
	At        time.Time
	Headers   map[string][]string
	IPAddress *string
}
