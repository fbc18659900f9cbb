package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"
)

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login stores the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	req := c.http.R().SetContext(ctx).SetBody(map[string]string{
		"username": username,
		"password": password,
	})
	if err := c.do(req, http.MethodPost, "/api/auth/login", &out); err != nil {
		return nil, err
	}
	c.tokens.SetToken(out.Token)
	return &out, nil
}

// ---- hotels ----

type HotelInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

func (c *Client) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	var out []models.Hotel
	if err := c.do(c.request().SetContext(ctx), http.MethodGet, "/api/hotels", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddHotel trims the input and rejects a bad email before any request.
func (c *Client) AddHotel(ctx context.Context, in HotelInput) (*models.Hotel, error) {
	utils.TrimStrings(&in)
	if !utils.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	var out models.Hotel
	if err := c.do(c.request().SetContext(ctx).SetBody(in), http.MethodPost, "/api/hotels", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteHotel(ctx context.Context, id uint) error {
	return c.do(c.request().SetContext(ctx), http.MethodDelete, fmt.Sprintf("/api/hotels/%d", id), nil)
}

// ---- guests ----

type GuestQR struct {
	GuestID uint   `json:"guestId"`
	QRToken string `json:"qrToken"`
	QRCode  string `json:"qrCode"`
}

func (c *Client) GetGuest(ctx context.Context, id uint) (*models.Guest, error) {
	var out models.Guest
	if err := c.do(c.request().SetContext(ctx), http.MethodGet, fmt.Sprintf("/api/v1/guests/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetGuestQR returns the QR as a base64 PNG data URI.
func (c *Client) GetGuestQR(ctx context.Context, id uint) (*GuestQR, error) {
	var out GuestQR
	if err := c.do(c.request().SetContext(ctx), http.MethodGet, fmt.Sprintf("/api/v1/guests/%d/qr", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetGuestByQR(ctx context.Context, token string) (*models.Guest, error) {
	var out models.Guest
	req := c.request().SetContext(ctx).SetPathParam("token", token)
	if err := c.do(req, http.MethodGet, "/api/v1/guests/qr/{token}", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- reservations ----

type ReservationInput struct {
	HotelID  uint   `json:"hotelId,omitempty"`
	GuestID  uint   `json:"guestId"`
	RoomIDs  []uint `json:"roomIds"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
	Adults   int    `json:"adults,omitempty"`
	Children int    `json:"children,omitempty"`
	MealPlan string `json:"mealPlan,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ListReservations filters by status and stay date when they are non-empty.
func (c *Client) ListReservations(ctx context.Context, status, date string) ([]models.Reservation, error) {
	req := c.request().SetContext(ctx)
	if status != "" {
		req.SetQueryParam("status", status)
	}
	if date != "" {
		req.SetQueryParam("date", date)
	}
	var out []models.Reservation
	if err := c.do(req, http.MethodGet, "/api/reservations/reservations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReservation(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	var out models.Reservation
	if err := c.do(c.request().SetContext(ctx).SetBody(in), http.MethodPost, "/api/reservations/create", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) reservationAction(ctx context.Context, id uint, action string, body interface{}) (*models.Reservation, error) {
	var out models.Reservation
	req := c.request().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	method := http.MethodPost
	if action == "status" {
		method = http.MethodPut
	}
	if err := c.do(req, method, fmt.Sprintf("/api/reservations/%d/%s", id, action), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckIn(ctx context.Context, id uint) (*models.Reservation, error) {
	return c.reservationAction(ctx, id, "check-in", nil)
}

func (c *Client) CheckOut(ctx context.Context, id uint) (*models.Reservation, error) {
	return c.reservationAction(ctx, id, "check-out", nil)
}

func (c *Client) UpdateReservationStatus(ctx context.Context, id uint, status, reason string) (*models.Reservation, error) {
	return c.reservationAction(ctx, id, "status", map[string]string{"status": status, "reason": reason})
}

// ---- rooms ----

func (c *Client) AllRooms(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	if err := c.do(c.request().SetContext(ctx), http.MethodGet, "/api/rooms/getAll", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableRooms takes YYYY-MM-DD dates; roomType may be empty.
func (c *Client) AvailableRooms(ctx context.Context, checkIn, checkOut, roomType string) ([]models.Room, error) {
	req := c.request().SetContext(ctx).SetQueryParams(map[string]string{
		"checkIn":  checkIn,
		"checkOut": checkOut,
	})
	if roomType = strings.TrimSpace(roomType); roomType != "" {
		req.SetQueryParam("type", roomType)
	}
	var out []models.Room
	if err := c.do(req, http.MethodGet, "/api/rooms/get/available", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- room filter ----

type SelectionResponse struct {
	Selection *models.GuestSelection `json:"selection"`
	Timestamp int64                  `json:"timestamp"`
}

func (c *Client) UpdateCriteria(ctx context.Context, criteria models.RoomFilterCriteria) (*models.RoomFilterCriteria, error) {
	var out models.RoomFilterCriteria
	req := c.request().SetContext(ctx).SetBody(criteria)
	if err := c.do(req, http.MethodPost, "/api/room-filter/update-criteria", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GuestSelections(ctx context.Context) (*SelectionResponse, error) {
	var out SelectionResponse
	if err := c.do(c.request().SetContext(ctx), http.MethodGet, "/api/room-filter/guest-selections", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearSelections(ctx context.Context) error {
	return c.do(c.request().SetContext(ctx), http.MethodDelete, "/api/room-filter/guest-selections", nil)
}

// ---- folios ----

type LineItemInput struct {
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Amount      models.Money `json:"amount"`
	RoomID      *uint        `json:"roomId,omitempty"`
}

func (c *Client) GetFolio(ctx context.Context, id uint) (*models.Folio, error) {
	var out models.Folio
	if err := c.do(c.request().SetContext(ctx), http.MethodGet, fmt.Sprintf("/api/folios/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PostLineItem(ctx context.Context, folioID uint, in LineItemInput) (*models.Folio, error) {
	var out models.Folio
	req := c.request().SetContext(ctx).SetBody(in)
	if err := c.do(req, http.MethodPost, fmt.Sprintf("/api/folios/%d/line-items", folioID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SettleFolio(ctx context.Context, id uint) (*models.Folio, error) {
	var out models.Folio
	if err := c.do(c.request().SetContext(ctx), http.MethodPost, fmt.Sprintf("/api/folios/%d/settle", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
