package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/core/domain"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

const (
	// PlatformKey is the gin context key holding the authenticated platform.
	PlatformKey = "platform"
	// OperatorKey is the gin context key holding the authenticated operator.
	OperatorKey = "operator"

	// SessionTokenIDKey and SessionSecretKey name the values stored in the
	// dashboard session cookie.
	SessionTokenIDKey = "token_id"
	SessionSecretKey  = "secret"

	// DashboardLoginPath is where unauthenticated dashboard requests land.
	DashboardLoginPath = "/admin/dashboard/login/"
)

// RequirePlatform authenticates requests via HTTP Basic auth where the
// username is the platform id and the password its API key. Every failure
// mode produces the same 401 body so callers cannot probe which platform ids
// exist.
func RequirePlatform(platforms *usecase.PlatformService, metrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, apiKey, ok := c.Request.BasicAuth()
		if !ok {
			metrics.RecordAuthOutcome("platform", "missing")
			rejectPlatform(c)
			return
		}

		platform, err := platforms.Authenticate(c.Request.Context(), id, apiKey)
		if err != nil {
			if usecase.IsAuthFailure(err) {
				metrics.RecordAuthOutcome("platform", failureOutcome(err))
				rejectPlatform(c)
				return
			}
			metrics.RecordAuthOutcome("platform", "error")
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		metrics.RecordAuthOutcome("platform", "ok")
		c.Set(PlatformKey, domain.PlatformPrincipal{Platform: *platform})
		c.Next()
	}
}

// failureOutcome maps an authentication failure onto a metrics label. The
// distinction exists only in counters and never reaches the response.
func failureOutcome(err error) string {
	switch {
	case errors.Is(err, usecase.ErrMissingCredential):
		return "missing"
	case errors.Is(err, usecase.ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, usecase.ErrUnknownPrincipal):
		return "unknown"
	case errors.Is(err, usecase.ErrExpired):
		return "expired"
	default:
		return "invalid"
	}
}

func rejectPlatform(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="platform api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

// RequireDashboard authenticates requests via the dashboard session cookie.
// Requests without a valid session are redirected to the login page; only
// infrastructure failures surface as errors.
func RequireDashboard(dashboardSessions *usecase.DashboardSessionService, metrics *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		tokenIDRaw, _ := session.Get(SessionTokenIDKey).(string)
		secret, _ := session.Get(SessionSecretKey).(string)
		if tokenIDRaw == "" || secret == "" {
			metrics.RecordAuthOutcome("dashboard", "missing")
			rejectDashboard(c)
			return
		}

		tokenID, err := uuid.Parse(tokenIDRaw)
		if err != nil {
			metrics.RecordAuthOutcome("dashboard", "malformed")
			rejectDashboard(c)
			return
		}

		principal, err := dashboardSessions.CheckSession(c.Request.Context(), tokenID, secret)
		if err != nil {
			if usecase.IsAuthFailure(err) {
				metrics.RecordAuthOutcome("dashboard", failureOutcome(err))
				rejectDashboard(c)
				return
			}
			metrics.RecordAuthOutcome("dashboard", "error")
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		metrics.RecordAuthOutcome("dashboard", "ok")
		c.Set(OperatorKey, principal)
		c.Next()
	}
}

func rejectDashboard(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, DashboardLoginPath)
	c.Abort()
}

// PlatformFrom returns the authenticated platform principal, if any.
func PlatformFrom(c *gin.Context) (domain.PlatformPrincipal, bool) {
	value, exists := c.Get(PlatformKey)
	if !exists {
		return domain.PlatformPrincipal{}, false
	}
	principal, ok := value.(domain.PlatformPrincipal)
	return principal, ok
}

// OperatorFrom returns the authenticated operator principal, if any.
func OperatorFrom(c *gin.Context) (domain.OperatorPrincipal, bool) {
	value, exists := c.Get(OperatorKey)
	if !exists {
		return domain.OperatorPrincipal{}, false
	}
	principal, ok := value.(domain.OperatorPrincipal)
	return principal, ok
}
