package client

import (
	"fmt"
	"time"

	"strength-tracker/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client talks to the tracker API on behalf of one authenticated user.
type Client struct {
	http  *resty.Client
	token string
}

// New builds a client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second),
	}
}

type apiError struct {
	Error string `json:"error"`
}

type loginResult struct {
	models.Profile
	Token string `json:"token"`
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(username, secret string) (models.Profile, error) {
	var result loginResult
	var apiErr apiError
	resp, err := c.http.R().
		SetBody(map[string]string{"username": username, "secret": secret}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/login")
	if err != nil {
		return models.Profile{}, fmt.Errorf("login request: %w", err)
	}
	if resp.IsError() {
		return models.Profile{}, fmt.Errorf("login rejected: %s", apiErr.Error)
	}
	c.token = result.Token
	return result.Profile, nil
}

// FetchLive returns the latest snapshot payload.
func (c *Client) FetchLive() (models.Payload, error) {
	var payload models.Payload
	var apiErr apiError
	resp, err := c.http.R().
		SetAuthToken(c.token).
		SetQueryParam("t", fmt.Sprint(time.Now().UnixMilli())).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/api/live-data")
	if err != nil {
		return models.Payload{}, fmt.Errorf("live-data request: %w", err)
	}
	if resp.IsError() {
		return models.Payload{}, fmt.Errorf("live-data failed: %s", apiErr.Error)
	}
	return payload, nil
}

// PublishSnapshot appends a payload through the ingest endpoint. Requires
// an admin token.
func (c *Client) PublishSnapshot(payload models.Payload) (uint, error) {
	var result struct {
		ID uint `json:"id"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetAuthToken(c.token).
		SetBody(payload).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/ingest")
	if err != nil {
		return 0, fmt.Errorf("ingest request: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("ingest rejected: %s", apiErr.Error)
	}
	return result.ID, nil
}

// FetchHistory returns the newest-first history for period ("week"|"month").
func (c *Client) FetchHistory(period string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	var apiErr apiError
	resp, err := c.http.R().
		SetAuthToken(c.token).
		SetQueryParam("period", period).
		SetQueryParam("t", fmt.Sprint(time.Now().UnixMilli())).
		SetResult(&entries).
		SetError(&apiErr).
		Get("/api/history")
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("history failed: %s", apiErr.Error)
	}
	return entries, nil
}
