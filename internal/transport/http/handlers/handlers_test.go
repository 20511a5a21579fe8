package handlers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	"github.com/Iapetus-11/link-shortener/internal/repository"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

type memPlatformRepo struct {
	platforms map[uuid.UUID]domain.Platform
}

func newMemPlatformRepo() *memPlatformRepo {
	return &memPlatformRepo{platforms: map[uuid.UUID]domain.Platform{}}
}

func (r *memPlatformRepo) Create(_ context.Context, platform domain.Platform) error {
	r.platforms[platform.ID] = platform
	return nil
}

func (r *memPlatformRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Platform, error) {
	if platform, ok := r.platforms[id]; ok {
		copy := platform
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memPlatformRepo) List(_ context.Context) ([]domain.Platform, error) {
	out := make([]domain.Platform, 0, len(r.platforms))
	for _, platform := range r.platforms {
		out = append(out, platform)
	}
	return out, nil
}

func (r *memPlatformRepo) UpdateAPIKeyHash(_ context.Context, id uuid.UUID, hash string) error {
	platform, ok := r.platforms[id]
	if !ok {
		return repository.ErrNotFound
	}
	platform.APIKeyHash = hash
	r.platforms[id] = platform
	return nil
}

func (r *memPlatformRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.platforms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.platforms, id)
	return nil
}

type memLinkRepo struct {
	bySlug map[string]domain.Link
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{bySlug: map[string]domain.Link{}}
}

func (r *memLinkRepo) Create(_ context.Context, link domain.Link) error {
	if _, ok := r.bySlug[link.Slug]; ok {
		return repository.ErrConflict
	}
	r.bySlug[link.Slug] = link
	return nil
}

func (r *memLinkRepo) GetBySlug(_ context.Context, slug string) (*domain.Link, error) {
	if link, ok := r.bySlug[slug]; ok {
		copy := link
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

type memVisitRepo struct {
	visits []domain.LinkVisit
}

func (r *memVisitRepo) Create(_ context.Context, visit domain.LinkVisit) error {
	r.visits = append(r.visits, visit)
	return nil
}

type memPublisher struct {
	events []domain.LinkVisitedEvent
}

func (p *memPublisher) PublishLinkVisited(_ context.Context, event domain.LinkVisitedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func testHasher(t *testing.T) *security.Hasher {
	t.Helper()

	weak := security.Argon2Profile{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	strong := security.Argon2Profile{Memory: 9 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

	hasher, err := security.NewHasher(weak, strong, 0)
	if err != nil {
		t.Fatalf("security.NewHasher: %v", err)
	}
	return hasher
}

func newTestLinkService(t *testing.T, links *memLinkRepo, visits *memVisitRepo, publisher *memPublisher) *usecase.LinkService {
	t.Helper()
	return usecase.NewLinkService(links, visits, publisher, zaptest.NewLogger(t))
}
