package controllers

import (
	"fmt"
	"net/http"
	"time"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type GuestController struct {
	Guests *services.GuestService
}

func NewGuestController(guests *services.GuestService) *GuestController {
	return &GuestController{Guests: guests}
}

// ----------------------------------------------------------------------
// POST /api/v1/guests/create (multipart, optional identityImage)
// ----------------------------------------------------------------------
func (ctrl *GuestController) Create(c *gin.Context) {
	var input services.GuestInput
	if err := c.ShouldBind(&input); err != nil {
		badPayload(c, err)
		return
	}

	var image *services.IdentityImage
	if fh, err := c.FormFile("identityImage"); err == nil {
		f, err := fh.Open()
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Cannot read identityImage")
			return
		}
		defer f.Close()
		image = &services.IdentityImage{Filename: fh.Filename, Content: f}
	}

	guest, err := ctrl.Guests.Create(c.Request.Context(), input, image)
	if err != nil {
		respondError(c, err, "Failed to create guest")
		return
	}
	c.JSON(http.StatusCreated, guest)
}

// ----------------------------------------------------------------------
// GET /api/v1/guests?q=
// ----------------------------------------------------------------------
func (ctrl *GuestController) List(c *gin.Context) {
	guests, err := ctrl.Guests.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to load guests")
		return
	}
	c.JSON(http.StatusOK, guests)
}

// ----------------------------------------------------------------------
// GET /api/v1/guests/export
// ----------------------------------------------------------------------
func (ctrl *GuestController) Export(c *gin.Context) {
	buf, err := ctrl.Guests.Export(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to export guests")
		return
	}
	name := fmt.Sprintf("guests-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (ctrl *GuestController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	guest, err := ctrl.Guests.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load guest")
		return
	}
	c.JSON(http.StatusOK, guest)
}

func (ctrl *GuestController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.GuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badPayload(c, err)
		return
	}
	guest, err := ctrl.Guests.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err, "Failed to update guest")
		return
	}
	c.JSON(http.StatusOK, guest)
}

// ----------------------------------------------------------------------
// GET /api/v1/guests/:id/qr  (?download=1 streams the PNG)
// ----------------------------------------------------------------------
func (ctrl *GuestController) QRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	png, guest, err := ctrl.Guests.QRCode(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to generate QR code")
		return
	}

	if c.Query("download") == "1" || c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="guest-%d-qr.png"`, guest.ID))
		c.Data(http.StatusOK, "image/png", png)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guestId": guest.ID,
		"qrToken": guest.QRToken,
		"qrCode":  utils.PNGDataURI(png),
	})
}

// ----------------------------------------------------------------------
// GET /api/v1/guests/qr/:token  (front desk scan)
// ----------------------------------------------------------------------
func (ctrl *GuestController) GetByQRToken(c *gin.Context) {
	guest, err := ctrl.Guests.GetByQRToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "Failed to resolve QR code")
		return
	}
	c.JSON(http.StatusOK, guest)
}
