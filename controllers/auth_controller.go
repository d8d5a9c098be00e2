package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/metrics"
	"github.com/princinho/knowledgebase/middleware"
)

const (
	refreshCookie     = "refreshToken"
	refreshCookiePath = "/auth"
)

type sessionResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{
		ID:        s.UserID,
		Email:     s.Email,
		Role:      s.Role.String(),
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

func (a *App) writeTokens(c *gin.Context, t *auth.Tokens) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    t.RefreshToken,
		Path:     refreshCookiePath,
		Domain:   a.Cookies.Domain,
		Expires:  t.RefreshExpiresAt,
		MaxAge:   int(time.Until(t.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   a.Cookies.Secure,
		SameSite: http.SameSiteNoneMode, // for cross-site
	})
	c.JSON(http.StatusOK, gin.H{
		"accessToken": t.AccessToken,
		"tokenType":   "Bearer",
		"expiresAt":   t.Session.ExpiresAt,
		"session":     toSessionResponse(t.Session),
	})
}

func (a *App) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     refreshCookiePath,
		Domain:   a.Cookies.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.Cookies.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// POST /auth/login
func (a *App) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if !a.bindJSON(c, &body) {
			return
		}
		if err := body.Validate(); err != nil {
			a.respondError(c, err)
			return
		}

		ctx := c.Request.Context()
		tokens, err := a.Issuer.Issue(ctx, body.Email, body.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				a.Metrics.LoginAttempt(metrics.LoginInvalid)
				a.Log.InfoContext(ctx, "login failed", "ip", c.ClientIP())
			case errors.Is(err, auth.ErrAccountDisabled):
				a.Metrics.LoginAttempt(metrics.LoginDisabled)
				a.Log.InfoContext(ctx, "login refused for disabled account", "ip", c.ClientIP())
			default:
				a.Metrics.LoginAttempt(metrics.LoginError)
			}
			a.respondError(c, err)
			return
		}

		a.Metrics.LoginAttempt(metrics.LoginSuccess)
		a.Log.InfoContext(ctx, "login", "user", tokens.Session.UserID, "role", tokens.Session.Role.String())
		a.writeTokens(c, tokens)
	}
}

// POST /auth/refresh
func (a *App) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(refreshCookie)
		if err != nil || token == "" {
			a.respondError(c, auth.ErrUnauthenticated)
			return
		}

		tokens, err := a.Issuer.Refresh(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrAccountDisabled) {
				a.clearRefreshCookie(c)
			}
			a.respondError(c, err)
			return
		}
		a.writeTokens(c, tokens)
	}
}

// POST /auth/logout. Access tokens already handed out stay valid until
// they expire.
func (a *App) Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.clearRefreshCookie(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /auth/me
func (a *App) Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := middleware.SessionFrom(c)
		if err := auth.Authorize(s, auth.Authenticated).Err(); err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(s))
	}
}
