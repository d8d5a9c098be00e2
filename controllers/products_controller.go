package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/middleware"
)

// GET /products?page&limit
func (a *App) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, window := a.page(c)

		items, total, err := a.Products.List(c.Request.Context(), middleware.SessionFrom(c), window)
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

// GET /products/:id
func (a *App) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := a.Products.Get(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// POST /admin/products
func (a *App) AddProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateProductDTO
		if !a.bindJSON(c, &body) {
			return
		}

		product, err := a.Products.Create(c.Request.Context(), middleware.SessionFrom(c), &body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PATCH /admin/products/:id
func (a *App) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProductDTO
		if !a.bindJSON(c, &body) {
			return
		}

		product, err := a.Products.Update(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), &body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id
func (a *App) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Products.Delete(c.Request.Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
