package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/transport/http/middleware"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

// CreateLinkRequest is the payload accepted by the link creation endpoint.
type CreateLinkRequest struct {
	Slug     string          `json:"slug"`
	URL      string          `json:"url" binding:"required"`
	Metadata json.RawMessage `json:"metadata"`
}

// LinkResponse is returned after a link is created.
type LinkResponse struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	URL       string          `json:"url"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

// LinksHandler serves link creation for authenticated platforms.
type LinksHandler struct {
	links  *usecase.LinkService
	logger *zap.Logger
}

// NewLinksHandler builds a new links handler instance.
func NewLinksHandler(links *usecase.LinkService, logger *zap.Logger) *LinksHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinksHandler{links: links, logger: logger}
}

// Create registers a short link owned by the calling platform.
func (h *LinksHandler) Create(c *gin.Context) {
	principal, ok := middleware.PlatformFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := h.links.CreateLink(c.Request.Context(), principal.Platform, req.Slug, req.URL, req.Metadata)
	if err != nil {
		if errors.Is(err, usecase.ErrSlugTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug already taken"})
			return
		}
		if errors.Is(err, usecase.ErrInvalidDestination) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "destination url must be absolute"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, LinkResponse{
		ID:        link.ID.String(),
		Slug:      link.Slug,
		URL:       link.URL,
		Metadata:  link.Metadata,
		CreatedAt: link.CreatedAt,
	})
}
