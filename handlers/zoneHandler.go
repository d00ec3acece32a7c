package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models"
)

func (h *Handler) createZone(c *gin.Context) {
	var input models.NewZone
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	zone, err := models.CreateZone(ctx, h.db, principal(c).ID, input)
	if err != nil {
		h.respondError(c, "createZone", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusCreated, zone)
}

// listZones returns every zone to admins and the assigned zones to users.
func (h *Handler) listZones(c *gin.Context) {
	zones, err := models.ListZones(c.Request.Context(), h.db, principal(c))
	if err != nil {
		h.respondError(c, "listZones", err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *Handler) myZones(c *gin.Context) {
	zones, err := models.ListMyZones(c.Request.Context(), h.db, principal(c).ID)
	if err != nil {
		h.respondError(c, "myZones", err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

func (h *Handler) toggleZone(c *gin.Context) {
	var input models.ToggleZoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Missing userId or zoneId"})
		return
	}
	result, err := models.ToggleUserZone(c.Request.Context(), h.db, h.rdb, h.logger, input)
	if err != nil {
		h.respondError(c, "toggleZone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": string(result)})
}

func (h *Handler) updateZone(c *gin.Context) {
	var input models.UpdateZoneInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	zone, err := models.UpdateZone(ctx, h.db, c.Param("id"), input)
	if err != nil {
		h.respondError(c, "updateZone", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, zone)
}

// deleteZone removes the zone together with its assignments and expenses.
func (h *Handler) deleteZone(c *gin.Context) {
	ctx := c.Request.Context()
	if err := models.DeleteZone(ctx, h.db, c.Param("id")); err != nil {
		h.respondError(c, "deleteZone", err)
		return
	}
	h.reporter.Invalidate(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted successfully"})
}
