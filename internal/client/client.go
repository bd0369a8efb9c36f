// Package client talks to the seatbooking HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
)

const (
	DefaultBaseURL     = "http://localhost:8080"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond

	idempotencyKeyHeader = "Idempotency-Key"
)

// Client wraps HTTP access to the seatbooking API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// APIError is returned when the API responds with a non-2xx status other
// than a booking conflict.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "seatbooking api error"
	}
	msg := e.Message
	if msg == "" {
		msg = e.Reason
	}
	return fmt.Sprintf("seatbooking api error: %s: %s", e.Status, msg)
}

var reasons = map[string]error{
	"INVALID_SELECTION":      domain.ErrInvalidSelection,
	"INVALID_INPUT":          domain.ErrInvalidInput,
	"IDEMPOTENCY_KEY_REUSED": domain.ErrIdempotencyKeyReused,
	"INVALID_SEAT_LAYOUT":    domain.ErrInvalidLayout,
	"ATTEMPT_IN_PROGRESS":    domain.ErrAttemptInProgress,
	"SEAT_CONFLICT":          domain.ErrConflict,
	"NOT_FOUND":              domain.ErrNotFound,
	"ALREADY_EXISTS":         domain.ErrDuplicate,
	"STORE_UNAVAILABLE":      domain.ErrStoreUnavailable,
}

// Unwrap lets callers match API errors with errors.Is against domain errors.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return reasons[e.Reason]
}

// IsNotFound reports whether the error represents a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// NewClient creates a new API client. If httpClient is nil, a default client is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/") + "/api/v1",
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

func (c *Client) ListFlights(ctx context.Context) ([]Flight, error) {
	var flights []Flight
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/flights", nil, nil, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *Client) GetFlightByNumber(ctx context.Context, number string) (Flight, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return Flight{}, errors.New("flight number is required")
	}
	endpoint := c.baseURL + "/flights?number=" + url.QueryEscape(number)
	var flight Flight
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &flight); err != nil {
		return Flight{}, err
	}
	return flight, nil
}

func (c *Client) SeatMap(ctx context.Context, flightID int64) (*seatmap.Grid, error) {
	endpoint := fmt.Sprintf("%s/flights/%d/seatmap", c.baseURL, flightID)
	var grid seatmap.Grid
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &grid); err != nil {
		return nil, err
	}
	return &grid, nil
}

// CommitBooking returns the result for both SUCCESS and CONFLICT. Retries of
// transient failures reuse idempotencyKey, so the server runs the commit at
// most once per key.
func (c *Client) CommitBooking(ctx context.Context, flightID int64, seatIDs []string, idempotencyKey string) (*domain.BookingResult, error) {
	body, err := json.Marshal(map[string][]string{"seat_ids": seatIDs})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set(idempotencyKeyHeader, idempotencyKey)
	}
	endpoint := fmt.Sprintf("%s/flights/%d/bookings", c.baseURL, flightID)

	var result domain.BookingResult
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, headers, &result, http.StatusConflict); err != nil {
		return nil, err
	}
	return &result, nil
}

// doJSON decodes 2xx responses, and the extra accepted statuses, into out.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, headers http.Header, out any, accept ...int) error {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header[k] = v
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		if !accepted(res.StatusCode, accept) {
			apiErr := readAPIError(res, endpoint)
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return waitErr
				}
				continue
			}
			return apiErr
		}

		err = json.NewDecoder(res.Body).Decode(out)
		_ = res.Body.Close()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response from %s: %w", endpoint, err)
		}
		return nil
	}

	return errors.New("request failed after retries")
}

func accepted(code int, extra []int) bool {
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return true
	}
	for _, c := range extra {
		if c == code {
			return true
		}
	}
	return false
}

func readAPIError(res *http.Response, endpoint string) *APIError {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
	_ = res.Body.Close()

	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Endpoint:   endpoint,
	}
	var payload struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(snippet, &payload); err == nil && payload.Reason != "" {
		apiErr.Reason = payload.Reason
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(snippet))
	}
	return apiErr
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.retryDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	limit := c.retryCap
	if limit <= 0 {
		limit = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= limit/2 {
			return limit
		}
		delay *= 2
	}
	return min(delay, limit)
}
