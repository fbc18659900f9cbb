// Package client is the typed HTTP client the portals use against the
// hotel-pms API.
package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidEmail = errors.New("invalid email address")
)

// APIError is any other non-2xx answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// TokenStore holds the bearer token between calls.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

type memoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore returns the default in-process token store.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (s *memoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *memoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *memoryTokenStore) Clear() { s.SetToken("") }

type Client struct {
	http   *resty.Client
	tokens TokenStore
}

type Option func(*Client)

func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).
			SetBaseURL(c.http.BaseURL).
			SetHeader("Accept", "application/json")
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json"),
		tokens: NewMemoryTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens exposes the store so callers can persist or inspect the token.
func (c *Client) Tokens() TokenStore { return c.tokens }

func (c *Client) request() *resty.Request {
	req := c.http.R()
	if token := c.tokens.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// check turns a response into the client's error types.
func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized:
		c.tokens.Clear()
		log.WithField("path", resp.Request.URL).Debug("401 from api, token cleared")
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case resp.IsError():
		msg := strings.TrimSpace(resp.String())
		if body, ok := resp.Error().(*errorBody); ok && body != nil {
			if body.Message != "" {
				msg = body.Message
			} else if body.Error != "" {
				msg = body.Error
			}
		}
		return &APIError{Status: code, Message: msg}
	}
	return nil
}

// do runs req against path with method and decodes a 2xx body into out.
func (c *Client) do(req *resty.Request, method, path string, out interface{}) error {
	req.SetError(&errorBody{})
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	return c.check(resp, err)
}
