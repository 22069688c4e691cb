package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hylla/lagerkoll/internal/app"
	"github.com/hylla/lagerkoll/internal/domain"
)

// defaultTimeout bounds the one outbound call; there is no retry and no
// cancellation beyond the caller's context.
const defaultTimeout = 10 * time.Second

// ValidationError carries the per-field error map a rejected creation
// returns. Fields map input names to their messages, surfaced next to the
// relevant form inputs.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// FieldMessage returns the first message recorded for a field, if any.
func (e *ValidationError) FieldMessage(field string) string {
	msgs := e.Fields[field]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// Client calls the external item-creation API.
type Client struct {
	baseURL   string
	sessionID string
	http      *http.Client
}

// New constructs an API client for the given base URL. The session id tags
// outbound requests so backend logs can be correlated with one dashboard run.
func New(baseURL, sessionID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		http:      &http.Client{Timeout: timeout},
	}
}

// createItemRequest is the wire body; description and price serialize as
// null when absent.
type createItemRequest struct {
	Name        string   `json:"name"`
	Stock       int      `json:"stock"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// createItemResponse covers both success and failure bodies.
type createItemResponse struct {
	ID      *int64              `json:"id"`
	Name    *string             `json:"name"`
	Stock   *int                `json:"stock"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// CreateItem posts one creation request. A 2xx response is success and the
// created item is decoded best-effort from the body; a structured error map
// comes back as *ValidationError; anything else is a generic failure.
func (c *Client) CreateItem(ctx context.Context, in app.CreateItemInput) (*domain.Item, error) {
	body := createItemRequest{
		Name:  strings.TrimSpace(in.Name),
		Stock: in.Stock,
		Price: in.Price,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		body.Description = &desc
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode create item request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/items", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build create item request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.sessionID != "" {
		req.Header.Set("X-Client-Session", c.sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read create item response: %w", err)
	}
	var decoded createItemResponse
	// The body is optional on success and may be non-JSON on gateway errors.
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if decoded.ID != nil && decoded.Name != nil && decoded.Stock != nil {
			item, err := domain.NewItem(*decoded.ID, *decoded.Name, *decoded.Stock)
			if err == nil {
				return &item, nil
			}
		}
		return nil, nil
	}

	if len(decoded.Errors) > 0 {
		return nil, &ValidationError{Fields: decoded.Errors}
	}
	if decoded.Message != "" {
		return nil, fmt.Errorf("create item failed: %s", decoded.Message)
	}
	return nil, fmt.Errorf("create item failed: unexpected status %d", resp.StatusCode)
}
