package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/middleware"
)

// GET /articles?page&limit&product
func (a *App) GetArticles() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, window := a.page(c)
		filter := database.ArticleFilter{
			Product: strings.TrimSpace(c.Query("product")),
			Page:    window,
		}

		items, total, err := a.Articles.List(c.Request.Context(), middleware.SessionFrom(c), filter)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /articles/:id
func (a *App) GetArticle() gin.HandlerFunc {
	return func(c *gin.Context) {
		article, err := a.Articles.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

// POST /admin/articles
func (a *App) AddArticle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateArticleDTO
		if !a.bindJSON(c, &body) {
			return
		}

		article, err := a.Articles.Create(c.Request.Context(), middleware.SessionFrom(c), &body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, article)
	}
}

// PATCH /admin/articles/:id
func (a *App) UpdateArticle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateArticleDTO
		if !a.bindJSON(c, &body) {
			return
		}

		article, err := a.Articles.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), &body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

// DELETE /admin/articles/:id
func (a *App) DeleteArticle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Articles.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// POST /admin/articles/:id/attachments (multipart, field "files")
func (a *App) AddArticleAttachments() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.MaxUploadBytes)
		}
		form, err := c.MultipartForm()
		if err != nil {
			a.Metrics.AttachmentUpload("rejected")
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				a.respondError(c, dto.NewValidationError("files", "Request body too large"))
				return
			}
			a.respondError(c, dto.NewValidationError("files", "Invalid multipart form"))
			return
		}

		article, err := a.Articles.AddAttachments(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), form.File["files"])
		if err != nil {
			a.Metrics.AttachmentUpload("failed")
			a.respondError(c, err)
			return
		}
		a.Metrics.AttachmentUpload("ok")
		c.JSON(http.StatusOK, article)
	}
}

// DELETE /admin/articles/:id/attachments/:attachmentId
func (a *App) DeleteArticleAttachment() gin.HandlerFunc {
	return func(c *gin.Context) {
		article, err := a.Articles.RemoveAttachment(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), c.Param("attachmentId"))
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	}
}
