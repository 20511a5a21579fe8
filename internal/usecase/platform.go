package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

// apiKeyLength is the symbol count of generated platform API keys.
const apiKeyLength = 69

// PlatformService manages platform records and authenticates their API keys.
type PlatformService struct {
	platforms port.PlatformRepository
	hasher    *security.Hasher
}

// NewPlatformService constructs a PlatformService instance.
func NewPlatformService(platforms port.PlatformRepository, hasher *security.Hasher) *PlatformService {
	return &PlatformService{platforms: platforms, hasher: hasher}
}

// Create registers a new platform and returns the generated API key. The
// plaintext key is returned exactly once; only its hash is stored.
func (s *PlatformService) Create(ctx context.Context, name string) (domain.Platform, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Platform{}, "", fmt.Errorf("platform name is required")
	}

	apiKey, err := security.GenerateAlphanumeric(apiKeyLength)
	if err != nil {
		return domain.Platform{}, "", fmt.Errorf("generate api key: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, s.hasher.Strong(), apiKey)
	if err != nil {
		return domain.Platform{}, "", fmt.Errorf("hash api key: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Platform{}, "", fmt.Errorf("generate platform id: %w", err)
	}

	platform := domain.Platform{ID: id, Name: name, APIKeyHash: hash}
	if err := s.platforms.Create(ctx, platform); err != nil {
		return domain.Platform{}, "", fmt.Errorf("store platform: %w", err)
	}

	return platform, apiKey, nil
}

// Authenticate resolves the platform named by id and verifies the presented
// API key against its stored hash. Every failure mode maps onto the shared
// authentication taxonomy so the transport can collapse them uniformly.
func (s *PlatformService) Authenticate(ctx context.Context, id, apiKey string) (*domain.Platform, error) {
	if id == "" || apiKey == "" {
		return nil, ErrMissingCredential
	}

	platformID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrMalformedCredential
	}

	platform, err := s.platforms.GetByID(ctx, platformID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownPrincipal
		}
		return nil, fmt.Errorf("lookup platform: %w", err)
	}

	if !s.hasher.Verify(ctx, s.hasher.Strong(), apiKey, platform.APIKeyHash) {
		return nil, ErrInvalidSecret
	}

	return platform, nil
}

// Get returns a platform by id.
func (s *PlatformService) Get(ctx context.Context, id uuid.UUID) (*domain.Platform, error) {
	platform, err := s.platforms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup platform: %w", err)
	}
	return platform, nil
}

// List returns all registered platforms.
func (s *PlatformService) List(ctx context.Context) ([]domain.Platform, error) {
	platforms, err := s.platforms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	return platforms, nil
}

// ResetKey replaces a platform's API key and returns the new plaintext key.
// The previous key stops verifying immediately.
func (s *PlatformService) ResetKey(ctx context.Context, id uuid.UUID) (string, error) {
	apiKey, err := security.GenerateAlphanumeric(apiKeyLength)
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, s.hasher.Strong(), apiKey)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}

	if err := s.platforms.UpdateAPIKeyHash(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("update api key hash: %w", err)
	}

	return apiKey, nil
}

// Delete removes a platform. Its key stops authenticating as soon as the row
// is gone.
func (s *PlatformService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.platforms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete platform: %w", err)
	}
	return nil
}
