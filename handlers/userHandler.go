package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
)

func (h *Handler) me(c *gin.Context) {
	user, err := models.GetUser(c.Request.Context(), h.db, principal(c).ID)
	if err != nil {
		h.respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"role":         user.Role,
		"profilePhoto": user.ProfilePhoto,
	})
}

func (h *Handler) userDashboard(c *gin.Context) {
	dash, err := h.reporter.UserDashboard(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.respondError(c, "userDashboard", err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := models.ListUsers(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, "listUsers", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) uploadProfilePhoto(c *gin.Context) {
	url, _, ok := h.saveProfilePhoto(c, "uploadProfilePhoto")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Profile picture uploaded",
		"profilePhoto": url,
	})
}

// replaceProfilePhoto also removes the photo it replaces from storage.
func (h *Handler) replaceProfilePhoto(c *gin.Context) {
	url, previous, ok := h.saveProfilePhoto(c, "replaceProfilePhoto")
	if !ok {
		return
	}
	h.removeStored(c.Request.Context(), previous)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Profile image updated successfully",
		"profilePhoto": url,
	})
}

func (h *Handler) saveProfilePhoto(c *gin.Context, funcName string) (url string, previous string, ok bool) {
	ctx := c.Request.Context()
	data, missing, err := readUpload(c, "image")
	if err != nil {
		h.respondError(c, funcName, err)
		return "", "", false
	}
	if missing {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return "", "", false
	}

	url, err = h.storeUpload(ctx, utils.UploadProfilePhoto, data)
	if err != nil {
		h.respondError(c, funcName, err)
		return "", "", false
	}
	previous, err = models.SetProfilePhoto(ctx, h.db, principal(c).ID, url)
	if err != nil {
		h.removeStored(ctx, url)
		h.respondError(c, funcName, err)
		return "", "", false
	}
	return url, previous, true
}
