package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/core/port"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

const (
	// slugLength is the symbol count of generated slugs.
	slugLength = 7
	// slugRetryLimit bounds how many fresh slugs are tried on collision.
	slugRetryLimit = 5
)

// LinkService creates short links, resolves them for redirects, and records
// visits.
type LinkService struct {
	links     port.LinkRepository
	visits    port.VisitRepository
	publisher port.EventPublisher
	logger    *zap.Logger
}

// NewLinkService constructs a LinkService instance.
func NewLinkService(links port.LinkRepository, visits port.VisitRepository, publisher port.EventPublisher, logger *zap.Logger) *LinkService {
	return &LinkService{links: links, visits: visits, publisher: publisher, logger: logger}
}

// CreateLink registers a short link for the platform. When slug is empty a
// random one is generated, retrying on collision; a caller-chosen slug that
// collides returns ErrSlugTaken instead.
func (s *LinkService) CreateLink(ctx context.Context, platform domain.Platform, slug, destination string, metadata json.RawMessage) (domain.Link, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return domain.Link{}, ErrInvalidDestination
	}
	parsed, err := url.Parse(destination)
	if err != nil || !parsed.IsAbs() {
		return domain.Link{}, ErrInvalidDestination
	}

	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	autogenerate := slug == ""
	attempts := 1
	if autogenerate {
		attempts = slugRetryLimit
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if autogenerate {
			slug, err = security.GenerateAlphanumeric(slugLength)
			if err != nil {
				return domain.Link{}, fmt.Errorf("generate slug: %w", err)
			}
		}

		id, err := uuid.NewV7()
		if err != nil {
			return domain.Link{}, fmt.Errorf("generate link id: %w", err)
		}

		link := domain.Link{
			ID:         id,
			PlatformID: platform.ID,
			Slug:       slug,
			URL:        destination,
			Metadata:   metadata,
			CreatedAt:  time.Now().UTC(),
		}

		err = s.links.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return domain.Link{}, fmt.Errorf("store link: %w", err)
		}
		if !autogenerate {
			return domain.Link{}, ErrSlugTaken
		}
	}

	return domain.Link{}, fmt.Errorf("generate slug: exhausted %d attempts", slugRetryLimit)
}

// Resolve returns the link registered under slug, or repository.ErrNotFound.
func (s *LinkService) Resolve(ctx context.Context, slug string) (*domain.Link, error) {
	link, err := s.links.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("lookup link: %w", err)
	}
	return link, nil
}

// RecordVisit persists a visit row and publishes the visited event. The
// publish is best effort; a bus outage never blocks the redirect path.
func (s *LinkService) RecordVisit(ctx context.Context, visit domain.LinkVisit) error {
	if err := s.visits.Create(ctx, visit); err != nil {
		return fmt.Errorf("store visit: %w", err)
	}

	if s.publisher != nil {
		event := domain.LinkVisitedEvent{
			EventID:   uuid.NewString(),
			LinkSlug:  visit.LinkSlug,
			At:        visit.At,
			IPAddress: visit.IPAddress,
			Headers:   visit.Headers,
		}
		if err := s.publisher.PublishLinkVisited(ctx, event); err != nil {
			s.logger.Warn("publish link visited event failed",
				zap.String("slug", visit.LinkSlug),
				zap.Error(err))
		}
	}

	return nil
}
