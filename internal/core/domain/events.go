package domain

import "time"

// LinkVisitedEvent represents the payload for shortener.link.visited messages.
type LinkVisitedEvent struct {
	EventID   string
	LinkSlug  string
	At        time.Time
	IPAddress *string
	Headers   map[string][]string
}
