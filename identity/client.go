// client.go - Backend API client for the identity provider's per-user metadata store

package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-marketplace-backend/models"

	"github.com/go-resty/resty/v2"
)

// MetadataClient mirrors the locally stored role into the provider's private metadata.
type MetadataClient interface {
	UpdateRole(ctx context.Context, userID string, role models.Role) error
}

// APIError is a non-2xx answer from the provider API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.Status, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsRetryable reports whether err is worth retrying. Transport failures are retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}

// Client talks to the provider backend API with a secret key.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client for baseURL (e.g. https://api.clerk.com).
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

type metadataRequest struct {
	PrivateMetadata map[string]any `json:"private_metadata"`
}

// UpdateRole merges {role} into the user's private metadata.
func (c *Client) UpdateRole(ctx context.Context, userID string, role models.Role) error {
	if userID == "" {
		return errors.New("update role: empty user id")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetBody(metadataRequest{PrivateMetadata: map[string]any{"role": string(role)}}).
		Patch("/v1/users/{id}/metadata")
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
