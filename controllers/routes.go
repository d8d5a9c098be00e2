package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/middleware"
)

// Register mounts every route on r. The /admin group is fenced here and
// the services check the same roles again.
func (a *App) Register(r *gin.Engine) {
	r.Use(middleware.Session(a.Issuer))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	r.POST("/auth/login", a.Login())
	r.POST("/auth/refresh", a.Refresh())
	r.POST("/auth/logout", a.Logout())
	r.GET("/auth/me", a.Me())

	r.GET("/articles", a.GetArticles())
	r.GET("/articles/:id", a.GetArticle())
	r.GET("/products", a.GetProducts())
	r.GET("/products/:id", a.GetProduct())
	r.GET("/search", a.SearchArticles())

	r.POST("/users/me/password", middleware.Require(auth.Authenticated, a.Metrics), a.ChangeMyPassword())

	admin := r.Group("/admin")
	admin.Use(middleware.Require(auth.AdminOnly, a.Metrics))
	{
		admin.POST("/articles", a.AddArticle())
		admin.PATCH("/articles/:id", a.UpdateArticle())
		admin.DELETE("/articles/:id", a.DeleteArticle())
		admin.POST("/articles/:id/attachments", a.AddArticleAttachments())
		admin.DELETE("/articles/:id/attachments/:attachmentId", a.DeleteArticleAttachment())

		admin.POST("/products", a.AddProduct())
		admin.PATCH("/products/:id", a.UpdateProduct())
		admin.DELETE("/products/:id", a.DeleteProduct())

		admin.POST("/users", a.CreateUser())
		admin.PATCH("/users/:id/role", a.UpdateUserRole())
	}
}
