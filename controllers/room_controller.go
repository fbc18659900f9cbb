package controllers

import (
	"net/http"
	"time"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{Rooms: rooms}
}

func queryDate(c *gin.Context, key string) (time.Time, bool) {
	d, err := utils.ParseDate(c.Query(key))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid or missing '"+key+"', expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// ----------------------------------------------------
// 1. GET /api/rooms/getAll
// ----------------------------------------------------

func (ctrl *RoomController) List(c *gin.Context) {
	rooms, err := ctrl.Rooms.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ----------------------------------------------------
// 2. GET /api/rooms/get/available?checkIn&checkOut[&type]
// ----------------------------------------------------

func (ctrl *RoomController) Available(c *gin.Context) {
	checkIn, ok := queryDate(c, "checkIn")
	if !ok {
		return
	}
	checkOut, ok := queryDate(c, "checkOut")
	if !ok {
		return
	}
	rooms, err := ctrl.Rooms.Available(c.Request.Context(), checkIn, checkOut, c.Query("type"), 0)
	if err != nil {
		respondError(c, err, "Failed to load available rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (ctrl *RoomController) ByType(c *gin.Context) {
	rooms, err := ctrl.Rooms.ByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		respondError(c, err, "Failed to load rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (ctrl *RoomController) ByHotel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rooms, err := ctrl.Rooms.ByHotel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to load rooms")
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ----------------------------------------------------
// 3. GET /api/rooms/status?date=
// ----------------------------------------------------

func (ctrl *RoomController) DayStatus(c *gin.Context) {
	date := utils.DateOnly(time.Now())
	if c.Query("date") != "" {
		d, ok := queryDate(c, "date")
		if !ok {
			return
		}
		date = d
	}
	cells, err := ctrl.Rooms.DayStatus(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to load room status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": utils.FormatDate(date), "rooms": cells})
}

// ----------------------------------------------------
// 4. GET /api/rooms/availability?from&to[&type]
// ----------------------------------------------------

func (ctrl *RoomController) Availability(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	days, err := ctrl.Rooms.Availability(c.Request.Context(), from, to, c.Query("type"))
	if err != nil {
		respondError(c, err, "Failed to compute availability")
		return
	}
	c.JSON(http.StatusOK, days)
}

// ----------------------------------------------------
// 5. POST /api/rooms, PUT /api/rooms/:id, DELETE /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) Create(c *gin.Context) {
	var input services.RoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badPayload(c, err)
		return
	}
	room, err := ctrl.Rooms.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create room")
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (ctrl *RoomController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.RoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badPayload(c, err)
		return
	}
	room, err := ctrl.Rooms.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err, "Update failed")
		return
	}
	c.JSON(http.StatusOK, room)
}

func (ctrl *RoomController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.Rooms.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete room.")
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Room deleted successfully")
}
