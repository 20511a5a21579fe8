package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/repository"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard</title></head>
<body>
<h1>Platforms</h1>
<table>
<tr><th>ID</th><th>Name</th><th></th></tr>
{{range .Platforms}}
<tr>
<td><code>{{.ID}}</code></td>
<td>{{.Name}}</td>
<td>
<form method="post" action="/admin/dashboard/platforms/{{.ID}}/reset-key/"><button>Reset key</button></form>
</td>
</tr>
{{end}}
</table>
<h2>New platform</h2>
<form method="post" action="/admin/dashboard/platforms/">
<input type="text" name="name" required>
<button type="submit">Create</button>
</form>
<form method="post" action="/admin/dashboard/logout/"><button>Log out</button></form>
</body>
</html>
`))

// PlatformResponse is returned by the platform mutation endpoints. APIKey is
// present only on the response that minted it.
type PlatformResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"api_key,omitempty"`
}

// PlatformsHandler serves the operator dashboard and its platform
// management endpoints.
type PlatformsHandler struct {
	platforms *usecase.PlatformService
	logger    *zap.Logger
}

// NewPlatformsHandler builds a new platforms handler instance.
func NewPlatformsHandler(platforms *usecase.PlatformService, logger *zap.Logger) *PlatformsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlatformsHandler{platforms: platforms, logger: logger}
}

// Dashboard renders the platform listing.
func (h *PlatformsHandler) Dashboard(c *gin.Context) {
	platforms, err := h.platforms.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := dashboardPage.Execute(c.Writer, gin.H{"Platforms": platforms}); err != nil {
		h.logger.Error("render dashboard failed", zap.Error(err))
	}
}

// Create registers a platform and returns its API key. The key is shown here
// and never again.
func (h *PlatformsHandler) Create(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	platform, apiKey, err := h.platforms.Create(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, PlatformResponse{
		ID:     platform.ID.String(),
		Name:   platform.Name,
		APIKey: apiKey,
	})
}

// ResetKey rotates a platform's API key; the old key stops working
// immediately.
func (h *PlatformsHandler) ResetKey(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	apiKey, err := h.platforms.ResetKey(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "platform not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, PlatformResponse{ID: id.String(), APIKey: apiKey})
}

// Delete removes a platform and revokes its key.
func (h *PlatformsHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.platforms.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "platform not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PlatformsHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid platform id"})
		return uuid.UUID{}, false
	}
	return id, true
}
