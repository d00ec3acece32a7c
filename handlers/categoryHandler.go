package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models"
)

func (h *Handler) createCategory(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Category name required"})
		return
	}
	ctx := c.Request.Context()
	category, err := models.CreateCategory(ctx, h.db, principal(c).ID, input)
	if err != nil {
		h.respondError(c, "createCategory", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := models.ListCategories(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, "listCategories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) categorySummaries(c *gin.Context) {
	rows, err := models.ListCategorySummaries(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, "categorySummaries", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var input models.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	category, err := models.UpdateCategory(ctx, h.db, c.Param("id"), input)
	if err != nil {
		h.respondError(c, "updateCategory", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	ctx := c.Request.Context()
	if err := models.DeleteCategory(ctx, h.db, c.Param("id")); err != nil {
		h.respondError(c, "deleteCategory", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
