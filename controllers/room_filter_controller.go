package controllers

import (
	"net/http"

	"hotel-pms/middleware"
	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

// RoomFilterController links the front desk with the guest-facing tablet.
type RoomFilterController struct {
	Filter *services.RoomFilterService
}

func NewRoomFilterController(filter *services.RoomFilterService) *RoomFilterController {
	return &RoomFilterController{Filter: filter}
}

// POST /api/room-filter/update-criteria
func (ctrl *RoomFilterController) UpdateCriteria(c *gin.Context) {
	var criteria models.RoomFilterCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		badPayload(c, err)
		return
	}
	saved, err := ctrl.Filter.UpdateCriteria(c.Request.Context(), criteria, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to update criteria")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GET /api/room-filter/criteria (tablet)
func (ctrl *RoomFilterController) Criteria(c *gin.Context) {
	view, err := ctrl.Filter.Criteria(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load criteria")
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /api/room-filter/select (tablet)
func (ctrl *RoomFilterController) Select(c *gin.Context) {
	var sel models.GuestSelection
	if err := c.ShouldBindJSON(&sel); err != nil {
		badPayload(c, err)
		return
	}
	saved, err := ctrl.Filter.Select(c.Request.Context(), sel)
	if err != nil {
		respondError(c, err, "Failed to record selection")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GET /api/room-filter/guest-selections
func (ctrl *RoomFilterController) GuestSelections(c *gin.Context) {
	view, err := ctrl.Filter.Selection(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load guest selection")
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /api/room-filter/guest-selections
func (ctrl *RoomFilterController) ClearSelections(c *gin.Context) {
	if err := ctrl.Filter.ClearSelection(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to clear guest selection")
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Guest selection cleared")
}
