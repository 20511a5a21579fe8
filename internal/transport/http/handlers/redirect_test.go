package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
)

func TestRedirectFollowsSlug(t *testing.T) {
	gin.SetMode(gin.TestMode)

	links := newMemLinkRepo()
	visits := &memVisitRepo{}
	publisher := &memPublisher{}
	service := newTestLinkService(t, links, visits, publisher)

	platform := domain.Platform{ID: uuid.New(), Name: "storefront"}
	link, err := service.CreateLink(context.Background(), platform, "docs", "https://example.com/docs", nil)
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	handler := NewRedirectHandler(service, zaptest.NewLogger(t))
	router := gin.New()
	router.GET("/:slug/", handler.Redirect)

	req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
	req.Header.Set("User-Agent", "curl/8.5")
	req.Header.Add("Accept-Language", "en")
	req.Header.Add("Accept-Language", "de")
	req.RemoteAddr = "203.0.113.9:4444"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != link.URL {
		t.Fatalf("expected redirect to %s, got %s", link.URL, got)
	}

	if len(visits.visits) != 1 {
		t.Fatalf("expected one recorded visit, got %d", len(visits.visits))
	}
	visit := visits.visits[0]
	if visit.LinkSlug != "docs" {
		t.Fatalf("expected visit slug docs, got %s", visit.LinkSlug)
	}
	if visit.IPAddress == nil || *visit.IPAddress != "203.0.113.9" {
		t.Fatalf("expected visit ip 203.0.113.9, got %v", visit.IPAddress)
	}
	if got := visit.Headers["user-agent"]; len(got) != 1 || got[0] != "curl/8.5" {
		t.Fatalf("expected lowercased user-agent header, got %v", visit.Headers)
	}
	if got := visit.Headers["accept-language"]; len(got) != 2 {
		t.Fatalf("expected multi-valued accept-language preserved, got %v", got)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
}

func TestRedirectUnknownSlug(t *testing.T) {
	gin.SetMode(gin.TestMode)

	visits := &memVisitRepo{}
	service := newTestLinkService(t, newMemLinkRepo(), visits, &memPublisher{})

	handler := NewRedirectHandler(service, zaptest.NewLogger(t))
	router := gin.New()
	router.GET("/:slug/", handler.Redirect)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(visits.visits) != 0 {
		t.Fatal("expected no visit recorded for unknown slug")
	}
}
