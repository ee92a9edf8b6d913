package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slotbook/pkg/model"
)

// APIClient talks to a running slotbook server. It keeps the access token
// from the last successful Login or Refresh and sends it on booking calls.
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
	token      string
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// StatusError is returned by the typed helpers for any non-2xx answer.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slotbook: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (c *APIClient) SetToken(token string) {
	c.token = token
}

func (c *APIClient) Token() string {
	return c.token
}

func (c *APIClient) Register(ctx context.Context, user *model.UserCreate) (*model.User, error) {
	var created model.User
	if err := c.expect(ctx, http.MethodPost, "/users/", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Login exchanges email and password for a token pair through the form
// encoded token endpoint.
func (c *APIClient) Login(ctx context.Context, email, password string) (*model.TokenPair, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	var pair model.TokenPair
	if err := decodeOK(resp, &pair); err != nil {
		return nil, err
	}
	c.token = pair.AccessToken
	return &pair, nil
}

func (c *APIClient) Refresh(ctx context.Context, refreshToken string) (*model.AccessToken, error) {
	var access model.AccessToken
	if err := c.expect(ctx, http.MethodPost, "/refresh", model.RefreshRequest{RefreshToken: refreshToken}, &access); err != nil {
		return nil, err
	}
	c.token = access.AccessToken
	return &access, nil
}

func (c *APIClient) CreateBooking(ctx context.Context, booking *model.BookingCreate) (*model.Booking, error) {
	var created model.Booking
	if err := c.expect(ctx, http.MethodPost, "/bookings/", booking, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *APIClient) ListBookings(ctx context.Context) ([]*model.Booking, error) {
	return c.listBookings(ctx, "/bookings/")
}

func (c *APIClient) BookingHistory(ctx context.Context) ([]*model.Booking, error) {
	return c.listBookings(ctx, "/bookings/history")
}

func (c *APIClient) UpcomingBookings(ctx context.Context) ([]*model.Booking, error) {
	return c.listBookings(ctx, "/bookings/upcoming")
}

func (c *APIClient) UpdateBooking(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error) {
	var updated model.Booking
	if err := c.expect(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *APIClient) CancelBooking(ctx context.Context, id string) error {
	return c.expect(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) listBookings(ctx context.Context, path string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	if err := c.expect(ctx, http.MethodGet, path, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *APIClient) expect(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.Do(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	return decodeOK(resp, target)
}

// Do sends a JSON request and returns the raw response whatever its status.
func (c *APIClient) Do(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.send(req)
}

func (c *APIClient) send(req *http.Request) (*Response, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

func (c *APIClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := c.Do(ctx, http.MethodGet, "/health", nil, nil)
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}

func decodeOK(resp *Response, target any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if target == nil {
		return nil
	}
	if err := resp.DecodeJSON(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *Response) *StatusError {
	var errResp struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = resp.DecodeJSON(&errResp)

	return &StatusError{
		StatusCode: resp.StatusCode,
		Code:       errResp.Code,
		Message:    errResp.Error,
	}
}
