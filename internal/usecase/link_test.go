package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/repository"
)

type stubLinkRepo struct {
	bySlug    map[string]domain.Link
	conflicts int
}

func newStubLinkRepo() *stubLinkRepo {
	return &stubLinkRepo{bySlug: map[string]domain.Link{}}
}

func (r *stubLinkRepo) Create(_ context.Context, link domain.Link) error {
	if _, ok := r.bySlug[link.Slug]; ok {
		r.conflicts++
		return repository.ErrConflict
	}
	r.bySlug[link.Slug] = link
	return nil
}

func (r *stubLinkRepo) GetBySlug(_ context.Context, slug string) (*domain.Link, error) {
	if link, ok := r.bySlug[slug]; ok {
		copy := link
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

type stubVisitRepo struct {
	visits []domain.LinkVisit
	err    error
}

func (r *stubVisitRepo) Create(_ context.Context, visit domain.LinkVisit) error {
	if r.err != nil {
		return r.err
	}
	r.visits = append(r.visits, visit)
	return nil
}

type stubPublisher struct {
	events []domain.LinkVisitedEvent
	err    error
}

func (p *stubPublisher) PublishLinkVisited(_ context.Context, event domain.LinkVisitedEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestLinkService(t *testing.T, links *stubLinkRepo, visits *stubVisitRepo, publisher *stubPublisher) *LinkService {
	t.Helper()
	return NewLinkService(links, visits, publisher, zaptest.NewLogger(t))
}

func TestCreateLinkGeneratesSlug(t *testing.T) {
	links := newStubLinkRepo()
	service := newTestLinkService(t, links, &stubVisitRepo{}, &stubPublisher{})

	platform := domain.Platform{ID: uuid.New(), Name: "storefront"}

	link, err := service.CreateLink(context.Background(), platform, "", "https://example.com/landing", nil)
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}

	if len(link.Slug) != 7 {
		t.Fatalf("expected 7 character slug, got %q", link.Slug)
	}
	if link.PlatformID != platform.ID {
		t.Fatalf("expected link owned by %s, got %s", platform.ID, link.PlatformID)
	}
	if string(link.Metadata) != "{}" {
		t.Fatalf("expected empty metadata object, got %s", link.Metadata)
	}
	if _, ok := links.bySlug[link.Slug]; !ok {
		t.Fatal("expected link to be stored under its slug")
	}
}

func TestCreateLinkCustomSlug(t *testing.T) {
	links := newStubLinkRepo()
	service := newTestLinkService(t, links, &stubVisitRepo{}, &stubPublisher{})

	platform := domain.Platform{ID: uuid.New(), Name: "storefront"}

	link, err := service.CreateLink(context.Background(), platform, "spring-sale", "https://example.com/sale", nil)
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
	if link.Slug != "spring-sale" {
		t.Fatalf("expected caller-chosen slug, got %q", link.Slug)
	}

	if _, err := service.CreateLink(context.Background(), platform, "spring-sale", "https://example.com/other", nil); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if links.conflicts != 1 {
		t.Fatalf("expected exactly one conflicting insert, got %d", links.conflicts)
	}
}

func TestCreateLinkRejectsBadDestination(t *testing.T) {
	service := newTestLinkService(t, newStubLinkRepo(), &stubVisitRepo{}, &stubPublisher{})

	platform := domain.Platform{ID: uuid.New(), Name: "storefront"}

	if _, err := service.CreateLink(context.Background(), platform, "", "", nil); err == nil {
		t.Fatal("expected error for empty destination")
	}
	if _, err := service.CreateLink(context.Background(), platform, "", "not-a-url", nil); err == nil {
		t.Fatal("expected error for relative destination")
	}
}

func TestResolve(t *testing.T) {
	links := newStubLinkRepo()
	service := newTestLinkService(t, links, &stubVisitRepo{}, &stubPublisher{})

	platform := domain.Platform{ID: uuid.New(), Name: "storefront"}
	created, err := service.CreateLink(context.Background(), platform, "docs", "https://example.com/docs", nil)
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}

	link, err := service.Resolve(context.Background(), "docs")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if link.ID != created.ID {
		t.Fatalf("expected link %s, got %s", created.ID, link.ID)
	}

	if _, err := service.Resolve(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordVisitPublishesEvent(t *testing.T) {
	visits := &stubVisitRepo{}
	publisher := &stubPublisher{}
	service := newTestLinkService(t, newStubLinkRepo(), visits, publisher)

	ip := "203.0.113.9"
	visit := domain.LinkVisit{
		LinkSlug:  "docs",
		At:        time.Now().UTC(),
		Headers:   map[string][]string{"User-Agent": {"curl/8.5"}},
		IPAddress: &ip,
	}

	if err := service.RecordVisit(context.Background(), visit); err != nil {
		t.Fatalf("RecordVisit returned error: %v", err)
	}

	if len(visits.visits) != 1 {
		t.Fatalf("expected one stored visit, got %d", len(visits.visits))
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.LinkSlug != "docs" {
		t.Fatalf("expected event slug docs, got %s", event.LinkSlug)
	}
	if event.EventID == "" {
		t.Fatal("expected event id to be populated")
	}
}

func TestRecordVisitPublishFailureIsNotFatal(t *testing.T) {
	visits := &stubVisitRepo{}
	publisher := &stubPublisher{err: errors.New("broker down")}
	service := newTestLinkService(t, newStubLinkRepo(), visits, publisher)

	visit := domain.LinkVisit{LinkSlug: "docs", At: time.Now().UTC()}
	if err := service.RecordVisit(context.Background(), visit); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
	if len(visits.visits) != 1 {
		t.Fatalf("expected visit stored despite publish failure, got %d", len(visits.visits))
	}
}

func TestRecordVisitStorageFailure(t *testing.T) {
	visits := &stubVisitRepo{err: errors.New("db down")}
	publisher := &stubPublisher{}
	service := newTestLinkService(t, newStubLinkRepo(), visits, publisher)

	visit := domain.LinkVisit{LinkSlug: "docs", At: time.Now().UTC()}
	if err := service.RecordVisit(context.Background(), visit); err == nil {
		t.Fatal("expected error when visit storage fails")
	}
	if len(publisher.events) != 0 {
		t.Fatal("expected no event when the visit was not stored")
	}
}
