// Package ota pushes room availability and rates to the channel manager.
package ota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-pms/models"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no channel-manager endpoint is set.
var ErrNotConfigured = errors.New("ota endpoint not configured")

// Availability is one (date, room type) row sent to the channel manager.
type Availability struct {
	Date      string       `json:"date"`
	RoomType  string       `json:"roomType"`
	Available int          `json:"available"`
	MinPrice  models.Money `json:"minPrice"`
}

type PushRequest struct {
	HotelID      uint           `json:"hotelId,omitempty"`
	GeneratedAt  time.Time      `json:"generatedAt"`
	Availability []Availability `json:"availability"`
}

type PushResponse struct {
	Accepted int    `json:"accepted"`
	Message  string `json:"message"`
}

type Client struct {
	httpClient *resty.Client
	endpoint   string
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		httpClient.SetHeader("X-API-Key", apiKey)
	}
	httpClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})
	return &Client{httpClient: httpClient, endpoint: endpoint}
}

// Configured reports whether an endpoint is set; a nil client is not configured.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// Push sends the availability snapshot.
func (c *Client) Push(ctx context.Context, req PushRequest) (*PushResponse, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	log.WithFields(log.Fields{
		"endpoint": c.endpoint,
		"rows":     len(req.Availability),
	}).Info("pushing availability to channel manager")

	var out PushResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to call channel manager: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("channel manager returned %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Accepted == 0 {
		out.Accepted = len(req.Availability)
	}
	return &out, nil
}
