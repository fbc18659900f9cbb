package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-pms/config"
	"hotel-pms/middleware"
	"hotel-pms/models"
	"hotel-pms/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.AutoMigrate(db))
	return db
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func hotelRouter(db *gorm.DB) *gin.Engine {
	ctrl := NewHotelController(services.NewHotelService(db))
	r := gin.New()
	r.GET("/api/hotels", ctrl.List)
	r.POST("/api/hotels", ctrl.Create)
	r.GET("/api/hotels/:id", ctrl.Get)
	r.DELETE("/api/hotels/:id", ctrl.Delete)
	return r
}

func TestHotelController_Create(t *testing.T) {
	db := newTestDB(t)
	r := hotelRouter(db)

	w := doJSON(r, http.MethodPost, "/api/hotels", gin.H{
		"name": "  Cinnamon Grand ", "address": " 77 Galle Road ", "phone": "+94112437437", "email": " info@cinnamon.lk ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var hotel models.Hotel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hotel))
	assert.Equal(t, "Cinnamon Grand", hotel.Name)
	assert.Equal(t, "info@cinnamon.lk", hotel.Email)
}

func TestHotelController_CreateInvalidEmail(t *testing.T) {
	db := newTestDB(t)
	r := hotelRouter(db)

	for _, email := range []string{"not-an-email", "missing@tld", ""} {
		w := doJSON(r, http.MethodPost, "/api/hotels", gin.H{
			"name": "Cinnamon Grand", "address": "77 Galle Road", "phone": "+94112437437", "email": email,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, email)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "error", body["status"])
	}

	var count int64
	require.NoError(t, db.Model(&models.Hotel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHotelController_NotFoundAndBadID(t *testing.T) {
	r := hotelRouter(newTestDB(t))

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/hotels/42", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/api/hotels/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/api/hotels/42", nil).Code)
}

func TestHotelController_DatabaseFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `hotels`").WillReturnError(errors.New("connection reset"))

	w := doJSON(hotelRouter(db), http.MethodGet, "/api/hotels", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load hotels")
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuestController_EmptyListIsArray(t *testing.T) {
	ctrl := NewGuestController(services.NewGuestService(newTestDB(t), t.TempDir()))
	r := gin.New()
	r.GET("/api/v1/guests", ctrl.List)

	w := doJSON(r, http.MethodGet, "/api/v1/guests", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReservationController_Create(t *testing.T) {
	db := newTestDB(t)
	hotel := models.Hotel{Name: "Kandy", Address: "x", Phone: "1", Email: "a@b.lk"}
	require.NoError(t, db.Create(&hotel).Error)
	room := models.Room{HotelID: hotel.ID, Number: "101", Type: "DOUBLE", BasePrice: 10000, CurrentPrice: 10000, Status: models.RoomAvailable}
	require.NoError(t, db.Create(&room).Error)
	guest := models.Guest{FirstName: "Asha", LastName: "Silva", QRToken: "tok-1"}
	require.NoError(t, db.Create(&guest).Error)

	ctrl := NewReservationController(services.NewReservationService(db, nil, ""))
	r := gin.New()
	r.POST("/api/reservations/create", ctrl.Create)

	w := doJSON(r, http.MethodPost, "/api/reservations/create", gin.H{
		"guestId": guest.ID, "roomId": room.ID, "checkIn": "2025-03-01", "checkOut": "2025-03-03",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res models.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, models.ReservationConfirmed, res.Status)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), res.CheckIn.UTC())

	w = doJSON(r, http.MethodPost, "/api/reservations/create", gin.H{
		"guestId": guest.ID, "roomIds": []uint{room.ID}, "checkIn": "2025-03-02", "checkOut": "2025-03-04",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/reservations/create", gin.H{
		"guestId": guest.ID, "roomIds": []uint{room.ID}, "checkIn": "03/02/2025", "checkOut": "2025-03-04",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(services.ErrValidation))
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrRoomUnavailable))
	assert.Equal(t, http.StatusConflict, statusFor(gorm.ErrDuplicatedKey))
	assert.Equal(t, http.StatusUnauthorized, statusFor(services.ErrInvalidCredentials))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
