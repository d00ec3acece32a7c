package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
)

func (h *Handler) createExpense(c *gin.Context) {
	var input models.NewExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	ctx := c.Request.Context()
	expense, err := models.CreateExpense(ctx, h.db, principal(c).ID, input)
	if err != nil {
		h.respondError(c, "createExpense", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusCreated, expense)
}

func (h *Handler) myExpenses(c *gin.Context) {
	var filter models.ExpenseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.respondBindError(c, err)
		return
	}
	expenses, err := models.ListMyExpenses(c.Request.Context(), h.db, principal(c).ID, filter)
	if err != nil {
		h.respondError(c, "myExpenses", err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *Handler) updateExpense(c *gin.Context) {
	var input models.UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	expense, err := models.UpdateExpense(ctx, h.db, principal(c), c.Param("id"), input)
	if err != nil {
		h.respondError(c, "updateExpense", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, expense)
}

func (h *Handler) deleteExpense(c *gin.Context) {
	ctx := c.Request.Context()
	if err := models.DeleteExpense(ctx, h.db, principal(c), c.Param("id")); err != nil {
		h.respondError(c, "deleteExpense", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// uploadReceipt stores the multipart "image" file and attaches it to the
// expense. The previous receipt object, if any, is removed afterwards.
func (h *Handler) uploadReceipt(c *gin.Context) {
	ctx := c.Request.Context()
	data, missing, err := readUpload(c, "image")
	if err != nil {
		h.respondError(c, "uploadReceipt", err)
		return
	}
	if missing {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}

	p := principal(c)
	id := c.Param("id")
	// Check access before writing anything to storage.
	if _, err := models.OwnedExpense(ctx, h.db, p, id); err != nil {
		h.respondError(c, "uploadReceipt", err)
		return
	}

	url, err := h.storeUpload(ctx, utils.UploadReceipt, data)
	if err != nil {
		h.respondError(c, "uploadReceipt", err)
		return
	}
	previous, err := models.SetReceiptUrl(ctx, h.db, p, id, url)
	if err != nil {
		h.removeStored(ctx, url)
		h.respondError(c, "uploadReceipt", err)
		return
	}
	h.removeStored(ctx, previous)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Receipt uploaded",
		"receiptUrl": url,
	})
}
