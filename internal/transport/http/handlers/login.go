package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Iapetus-11/link-shortener/internal/transport/http/middleware"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

const dashboardPath = "/admin/dashboard/"

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard Login</title></head>
<body>
<h1>Dashboard Login</h1>
{{if .Failed}}<p>Login failed.</p>{{end}}
<form method="post" action="/admin/dashboard/login/">
<input type="password" name="password" autofocus required>
<button type="submit">Log in</button>
</form>
</body>
</html>
`))

// LoginHandler serves the dashboard login form and manages the session
// cookie lifecycle.
type LoginHandler struct {
	dashboardSessions *usecase.DashboardSessionService
	logger            *zap.Logger
}

// NewLoginHandler builds a new login handler instance.
func NewLoginHandler(dashboardSessions *usecase.DashboardSessionService, logger *zap.Logger) *LoginHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginHandler{dashboardSessions: dashboardSessions, logger: logger}
}

// Form renders the login page.
func (h *LoginHandler) Form(c *gin.Context) {
	h.render(c, http.StatusOK, false)
}

// Submit verifies the operator password and establishes a session. The page
// re-renders with a generic failure message on a wrong password; nothing in
// the response distinguishes why the login failed.
func (h *LoginHandler) Submit(c *gin.Context) {
	password := c.PostForm("password")

	grant, err := h.dashboardSessions.AttemptLogin(c.Request.Context(), password)
	if err != nil {
		if usecase.IsAuthFailure(err) {
			h.render(c, http.StatusUnauthorized, true)
			return
		}
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionTokenIDKey, grant.TokenID.String())
	session.Set(middleware.SessionSecretKey, grant.Secret)
	if err := session.Save(); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Redirect(http.StatusSeeOther, dashboardPath)
}

// Logout clears the session cookie. The token row stays behind and simply
// ages out.
func (h *LoginHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/admin", MaxAge: -1})
	if err := session.Save(); err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Redirect(http.StatusSeeOther, middleware.DashboardLoginPath)
}

func (h *LoginHandler) render(c *gin.Context, status int, failed bool) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := loginPage.Execute(c.Writer, gin.H{"Failed": failed}); err != nil {
		h.logger.Error("render login page failed", zap.Error(err))
	}
}
