package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"abc.def.ghi","user":{"id":1,"username":"frontdesk"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	resp, err := c.Login(context.Background(), "frontdesk", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", resp.Token)
	assert.Equal(t, "abc.def.ghi", c.Tokens().Token())
}

func TestUnauthorizedClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Token expired","code":"TOKEN_EXPIRED"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Tokens().SetToken("stale")

	_, err := c.ListHotels(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Tokens().Token())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"Insufficient permissions"}`, wantErr: ErrForbidden},
		{name: "message field", status: http.StatusConflict, body: `{"status":"error","message":"Room 101 already booked"}`, wantMsg: "Room 101 already booked"},
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"Invalid request body"}`, wantMsg: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).DeleteHotel(context.Background(), 3)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestAddHotel(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		var in HotelInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Jetwing Lagoon", in.Name)
		assert.Equal(t, "reservations@jetwing.lk", in.Email)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"name":"Jetwing Lagoon","email":"reservations@jetwing.lk"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.AddHotel(context.Background(), HotelInput{Name: "Jetwing Lagoon", Email: "not an email"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	hotel, err := c.AddHotel(context.Background(), HotelInput{
		Name:    "  Jetwing Lagoon ",
		Address: " Negombo ",
		Email:   " reservations@jetwing.lk ",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), hotel.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEndpoints(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.RequestURI())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet && (r.URL.Path == "/api/rooms/getAll" || r.URL.Path == "/api/reservations/reservations") {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	tokens := NewMemoryTokenStore()
	tokens.SetToken("tok")
	c := New(srv.URL, WithTokenStore(tokens))

	_, err := c.AllRooms(ctx)
	require.NoError(t, err)
	_, err = c.ListReservations(ctx, "CONFIRMED", "2025-03-01")
	require.NoError(t, err)
	_, err = c.CreateReservation(ctx, ReservationInput{GuestID: 1, RoomIDs: []uint{2}, CheckIn: "2025-03-01", CheckOut: "2025-03-02"})
	require.NoError(t, err)
	_, err = c.UpdateReservationStatus(ctx, 9, "CANCELLED", "guest called")
	require.NoError(t, err)
	_, err = c.GetGuest(ctx, 4)
	require.NoError(t, err)
	_, err = c.GetGuestByQR(ctx, "abc-123")
	require.NoError(t, err)
	_, err = c.GetFolio(ctx, 5)
	require.NoError(t, err)
	_, err = c.SettleFolio(ctx, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /api/rooms/getAll",
		"GET /api/reservations/reservations?date=2025-03-01&status=CONFIRMED",
		"POST /api/reservations/create",
		"PUT /api/reservations/9/status",
		"GET /api/v1/guests/4",
		"GET /api/v1/guests/qr/abc-123",
		"GET /api/folios/5",
		"POST /api/folios/5/settle",
	}, got)
}
