package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
)

type updateRoleRequest struct {
	UserId string      `json:"userId" binding:"required"`
	Role   models.Role `json:"role" binding:"required,role"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (h *Handler) adminListUsers(c *gin.Context) {
	rows, err := models.AdminListUsers(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, "adminListUsers", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) updateRole(c *gin.Context) {
	var input updateRoleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}
	user, err := models.UpdateUserRole(c.Request.Context(), h.db, input.UserId, input.Role)
	if err != nil {
		h.respondError(c, "updateRole", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// adminCreateUser accepts a multipart form with an optional profilePhoto file.
func (h *Handler) adminCreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	var input models.CreateUserInput
	if err := c.ShouldBind(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	phone, err := h.normalizePhone(input.Phone)
	if err != nil {
		h.respondError(c, "adminCreateUser", err)
		return
	}
	input.Phone = phone

	photo, err := h.optionalProfilePhoto(ctx, c)
	if err != nil {
		h.respondError(c, "adminCreateUser", err)
		return
	}
	input.ProfilePhoto = photo

	user, err := models.AdminCreateUser(ctx, h.db, input)
	if err != nil {
		h.removeStored(ctx, photo)
		h.respondError(c, "adminCreateUser", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) adminUpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	var input models.UpdateUserInput
	if err := c.ShouldBind(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	if input.Phone != nil {
		phone, err := h.normalizePhone(*input.Phone)
		if err != nil {
			h.respondError(c, "adminUpdateUser", err)
			return
		}
		input.Phone = &phone
	}

	photo, err := h.optionalProfilePhoto(ctx, c)
	if err != nil {
		h.respondError(c, "adminUpdateUser", err)
		return
	}
	var previous string
	if photo != "" {
		input.ProfilePhoto = &photo
		if current, err := models.GetUser(ctx, h.db, c.Param("id")); err == nil {
			previous = current.ProfilePhoto
		}
	}

	user, err := models.AdminUpdateUser(ctx, h.db, c.Param("id"), input)
	if err != nil {
		h.removeStored(ctx, photo)
		h.respondError(c, "adminUpdateUser", err)
		return
	}
	if previous != photo {
		h.removeStored(ctx, previous)
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, user)
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := models.GetUser(ctx, h.db, c.Param("id"))
	if err != nil {
		h.respondError(c, "adminDeleteUser", err)
		return
	}
	if err := models.DeleteUser(ctx, h.db, user.ID); err != nil {
		h.respondError(c, "adminDeleteUser", err)
		return
	}
	h.removeStored(ctx, user.ProfilePhoto)
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var input resetPasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	if err := models.ResetPassword(c.Request.Context(), h.db, c.Param("id"), input.NewPassword); err != nil {
		h.respondError(c, "resetPassword", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *Handler) userZoneIds(c *gin.Context) {
	ids, err := models.ListUserZoneIds(c.Request.Context(), h.db, c.Param("id"))
	if err != nil {
		h.respondError(c, "userZoneIds", err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) dashboard(c *gin.Context) {
	summary, err := h.reporter.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) normalizePhone(phone string) (string, error) {
	if phone == "" {
		return "", nil
	}
	normalized, err := utils.NormalizePhoneNumber(phone, h.cfg.PhoneRegion)
	if err != nil {
		return "", utils.ValidationError("Invalid phone number")
	}
	return normalized, nil
}

// optionalProfilePhoto uploads the profilePhoto form file when one was sent.
func (h *Handler) optionalProfilePhoto(ctx context.Context, c *gin.Context) (string, error) {
	data, missing, err := readUpload(c, "profilePhoto")
	if err != nil || missing {
		return "", err
	}
	return h.storeUpload(ctx, utils.UploadProfilePhoto, data)
}
