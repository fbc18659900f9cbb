package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type hotelPayload struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"required,hotelemail"`
	Description string `json:"description"`
}

func (p hotelPayload) input() services.HotelInput {
	return services.HotelInput{
		Name:        p.Name,
		Address:     p.Address,
		Phone:       p.Phone,
		Email:       p.Email,
		Description: p.Description,
	}
}

type HotelController struct {
	Hotels *services.HotelService
}

func NewHotelController(hotels *services.HotelService) *HotelController {
	return &HotelController{Hotels: hotels}
}

// ---------------------------
// 1) GET /api/hotels
// ---------------------------

func (ctrl *HotelController) List(c *gin.Context) {
	hotels, err := ctrl.Hotels.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load hotels")
		return
	}
	c.JSON(http.StatusOK, hotels)
}

// ---------------------------
// 2) GET /api/hotels/:id
// ---------------------------

func (ctrl *HotelController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	hotel, err := ctrl.Hotels.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// ---------------------------
// 3) POST /api/hotels
// ---------------------------

func (ctrl *HotelController) Create(c *gin.Context) {
	var payload hotelPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	hotel, err := ctrl.Hotels.Create(c.Request.Context(), payload.input())
	if err != nil {
		respondError(c, err, "Failed to create hotel")
		return
	}
	c.JSON(http.StatusCreated, hotel)
}

// ---------------------------
// 4) PUT /api/hotels/:id
// ---------------------------

func (ctrl *HotelController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload hotelPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	hotel, err := ctrl.Hotels.Update(c.Request.Context(), id, payload.input())
	if err != nil {
		respondError(c, err, "Failed to update hotel")
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// ---------------------------
// 5) DELETE /api/hotels/:id
// ---------------------------

func (ctrl *HotelController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Hotels.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete hotel")
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Hotel deleted successfully")
}
