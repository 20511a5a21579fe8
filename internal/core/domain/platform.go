package domain

import "github.com/google/uuid"

// Platform represents a machine client authorized to create links through the API.
// The raw API key is handed out exactly once at issuance; only its hash persists.
type Platform struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
}
