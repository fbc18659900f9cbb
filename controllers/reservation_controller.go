package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type createReservationPayload struct {
	HotelID  uint   `json:"hotelId"`
	GuestID  uint   `json:"guestId" binding:"required"`
	RoomIDs  []uint `json:"roomIds"`
	RoomID   uint   `json:"roomId"`
	CheckIn  string `json:"checkIn" binding:"required,isodate"`
	CheckOut string `json:"checkOut" binding:"required,isodate"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
	MealPlan string `json:"mealPlan"`
	Notes    string `json:"notes"`
}

type statusPayload struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type cancelPayload struct {
	Reason string `json:"reason"`
}

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

// ---------------------------
// 1) GET /api/reservations/reservations?status=&date=
// ---------------------------

func (ctrl *ReservationController) List(c *gin.Context) {
	filter := services.ReservationFilter{Status: c.Query("status")}
	if raw := c.Query("date"); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		filter.Date = &d
	}
	reservations, err := ctrl.Reservations.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to load reservations")
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (ctrl *ReservationController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := ctrl.Reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load reservation")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------------------------
// 2) POST /api/reservations/create
// ---------------------------

func (ctrl *ReservationController) Create(c *gin.Context) {
	var payload createReservationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	roomIDs := payload.RoomIDs
	if len(roomIDs) == 0 && payload.RoomID != 0 {
		roomIDs = []uint{payload.RoomID}
	}
	res, err := ctrl.Reservations.Create(c.Request.Context(), services.ReservationInput{
		HotelID:  payload.HotelID,
		GuestID:  payload.GuestID,
		RoomIDs:  roomIDs,
		CheckIn:  payload.CheckIn,
		CheckOut: payload.CheckOut,
		Adults:   payload.Adults,
		Children: payload.Children,
		MealPlan: payload.MealPlan,
		Notes:    payload.Notes,
	})
	if err != nil {
		respondError(c, err, "Failed to create reservation")
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ---------------------------
// 3) PUT /api/reservations/:id/status
// ---------------------------

func (ctrl *ReservationController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload statusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badPayload(c, err)
		return
	}
	res, err := ctrl.Reservations.UpdateStatus(c.Request.Context(), id, payload.Status, payload.Reason)
	if err != nil {
		respondError(c, err, "Failed to update reservation status")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------------------------
// 4) check-in / check-out / cancel
// ---------------------------

func (ctrl *ReservationController) CheckIn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := ctrl.Reservations.CheckIn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Check-in failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *ReservationController) CheckOut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := ctrl.Reservations.CheckOut(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Check-out failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctrl *ReservationController) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload cancelPayload
	// body is optional
	_ = c.ShouldBindJSON(&payload)
	res, err := ctrl.Reservations.Cancel(c.Request.Context(), id, payload.Reason)
	if err != nil {
		respondError(c, err, "Cancellation failed")
		return
	}
	c.JSON(http.StatusOK, res)
}
