package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/middleware"
)

// GET /search?q&size
func (a *App) SearchArticles() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dto.SearchDTO
		if err := c.ShouldBindQuery(&q); err != nil {
			a.respondError(c, dto.NewValidationError("size", "Must be a number"))
			return
		}

		resp, err := a.Search.Search(c.Request.Context(), middleware.SessionFrom(c), &q)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
