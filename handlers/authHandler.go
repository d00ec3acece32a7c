package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	user, err := models.Signup(ctx, h.db, input)
	if err != nil {
		h.respondError(c, "signup", err)
		return
	}
	h.reporter.Invalidate(ctx)
	token, err := h.tokens.JwtGenerate(user.ID, user.Role.String())
	if err != nil {
		h.respondError(c, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	user, err := models.Login(c.Request.Context(), h.db, input.Email, input.Password)
	if err != nil {
		h.respondError(c, "login", err)
		return
	}
	token, err := h.tokens.JwtGenerate(user.ID, user.Role.String())
	if err != nil {
		h.respondError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
