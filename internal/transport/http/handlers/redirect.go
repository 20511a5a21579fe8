package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/repository"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

// RedirectHandler resolves slugs and issues redirects. This is the only
// unauthenticated surface of the service.
type RedirectHandler struct {
	links  *usecase.LinkService
	logger *zap.Logger
}

// NewRedirectHandler builds a new redirect handler instance.
func NewRedirectHandler(links *usecase.LinkService, logger *zap.Logger) *RedirectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{links: links, logger: logger}
}

// Redirect resolves the slug and sends the visitor on with a 307. The visit
// record is best effort; analytics failures never break the redirect.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	slug := c.Param("slug")

	link, err := h.links.Resolve(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.String(http.StatusNotFound, "not found")
			return
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	visit := domain.LinkVisit{
		LinkSlug: link.Slug,
		At:       time.Now().UTC(),
		Headers:  lowercaseHeaders(c.Request.Header),
	}
	if ip := c.ClientIP(); ip != "" {
		visit.IPAddress = &ip
	}

	if err := h.links.RecordVisit(c.Request.Context(), visit); err != nil {
		h.logger.Warn("record visit failed", zap.String("slug", link.Slug), zap.Error(err))
	}

	c.Redirect(http.StatusTemporaryRedirect, link.URL)
}

func lowercaseHeaders(headers http.Header) map[string][]string {
	out := make(map[string][]string, len(headers))
	for name, values := range headers {
		key := strings.ToLower(name)
		out[key] = append(out[key], values...)
	}
	return out
}
