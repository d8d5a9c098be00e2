package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/knowledgebase/dto"
	"github.com/princinho/knowledgebase/middleware"
)

// POST /admin/users
func (a *App) CreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterUserDTO
		if !a.bindJSON(c, &body) {
			return
		}

		user, err := a.Users.Create(c.Request.Context(), middleware.SessionFrom(c), &body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// PATCH /admin/users/:id/role
func (a *App) UpdateUserRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateRoleDTO
		if !a.bindJSON(c, &body) {
			return
		}

		user, err := a.Users.UpdateRole(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"), &body)
		if err != nil {
			a.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// POST /users/me/password
func (a *App) ChangeMyPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if !a.bindJSON(c, &body) {
			return
		}

		if err := a.Users.ChangePassword(c.Request.Context(), middleware.SessionFrom(c), &body); err != nil {
			a.respondError(c, err)
			return
		}

		a.clearRefreshCookie(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
