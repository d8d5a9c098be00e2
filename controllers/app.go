package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/metrics"
	"github.com/princinho/knowledgebase/services"
	"github.com/princinho/knowledgebase/utils"
)

type CookieConfig struct {
	Secure bool
	Domain string
}

// App holds every dependency the handlers need. Handlers are built from it
// with the usual func() gin.HandlerFunc shape.
type App struct {
	Issuer   *auth.Issuer
	Users    *services.UserService
	Articles *services.ArticleService
	Products *services.ProductService
	Search   *services.SearchService

	Log     *slog.Logger
	Metrics *metrics.Metrics
	Limits  utils.PageLimits
	Cookies CookieConfig
	// MaxUploadBytes caps a whole multipart request.
	MaxUploadBytes int64
}

// respondError is the single place a service error becomes an HTTP status.
func (a *App) respondError(c *gin.Context, err error) {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, auth.ErrUnauthenticated):
		a.Metrics.Denied(auth.ReasonUnauthenticated.String())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, auth.ErrForbidden):
		a.Metrics.Denied(auth.ReasonForbidden.String())
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, auth.ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrAttachmentsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attachments are not available"})
	case errors.Is(err, context.Canceled):
		// client went away
		a.Log.InfoContext(c.Request.Context(), "request cancelled", "path", c.FullPath())
		c.AbortWithStatus(http.StatusRequestTimeout)
	default:
		attrs := []any{"path", c.FullPath(), "error", err}
		var serr *database.StoreError
		if errors.As(err, &serr) {
			attrs = append(attrs, "op", serr.Op, "resource", serr.Resource, "id", serr.ID)
		}
		a.Log.ErrorContext(c.Request.Context(), "request failed", attrs...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes the body into dst. Shape errors are reported as a
// validation failure on "payload"; field rules run later in the service.
func (a *App) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		a.respondError(c, dto.InvalidPayload())
		return false
	}
	return true
}

func (a *App) page(c *gin.Context) (page, limit int, p database.Page) {
	page, limit, skip := a.Limits.Resolve(c.Query("page"), c.Query("limit"))
	return page, limit, database.Page{Skip: skip, Limit: int64(limit)}
}
