package controllers

import (
	"fmt"
	"net/http"

	"hotel-pms/middleware"
	"hotel-pms/services"

	"github.com/gin-gonic/gin"
)

type voidPayload struct {
	Reason string `json:"reason" binding:"required"`
}

type FolioController struct {
	Folios *services.FolioService
}

func NewFolioController(folios *services.FolioService) *FolioController {
	return &FolioController{Folios: folios}
}

func (ctrl *FolioController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	folio, err := ctrl.Folios.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load folio")
		return
	}
	c.JSON(http.StatusOK, folio)
}

func (ctrl *FolioController) ByReservation(c *gin.Context) {
	id, ok := paramID(c, "reservationId")
	if !ok {
		return
	}
	folio, err := ctrl.Folios.ByReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load folio")
		return
	}
	c.JSON(http.StatusOK, folio)
}

// POST /api/folios/:id/line-items
func (ctrl *FolioController) PostLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.LineItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badPayload(c, err)
		return
	}
	folio, err := ctrl.Folios.PostLineItem(c.Request.Context(), id, input, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to post line item")
		return
	}
	c.JSON(http.StatusCreated, folio)
}

// POST /api/folios/:id/line-items/:itemId/void
func (ctrl *FolioController) VoidLineItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var payload voidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	folio, err := ctrl.Folios.VoidLineItem(c.Request.Context(), id, itemID, payload.Reason, middleware.Actor(c))
	if err != nil {
		respondError(c, err, "Failed to void line item")
		return
	}
	c.JSON(http.StatusOK, folio)
}

func (ctrl *FolioController) Settle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	folio, err := ctrl.Folios.Settle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to settle folio")
		return
	}
	c.JSON(http.StatusOK, folio)
}

func (ctrl *FolioController) Close(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	folio, err := ctrl.Folios.Close(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to close folio")
		return
	}
	c.JSON(http.StatusOK, folio)
}

// GET /api/folios/:id/invoice
func (ctrl *FolioController) Invoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdf, err := ctrl.Folios.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to render invoice")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="folio-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
