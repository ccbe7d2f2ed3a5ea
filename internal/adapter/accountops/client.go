// Package accountops calls the privileged account-lifecycle endpoints owned
// by the auth subsystem. This core only forwards requests and interprets the
// result; account internals stay outside it.
package accountops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the external account-lifecycle HTTP endpoints.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client authorized by the given bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type opRequest struct {
	UID         string `json:"uid"`
	NewPassword string `json:"newPassword,omitempty"`
}

type opResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ApproveAccount approves a pending account.
func (c *Client) ApproveAccount(ctx context.Context, uid string) error {
	return c.post(ctx, "/approveUser", opRequest{UID: uid})
}

// SetPassword sets a password on behalf of a user. The endpoint owns hashing
// and credential storage; the password only passes through.
func (c *Client) SetPassword(ctx context.Context, uid, newPassword string) error {
	return c.post(ctx, "/setUserPassword", opRequest{UID: uid, NewPassword: newPassword})
}

// DeleteAccount deletes an account together with its login.
func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	return c.post(ctx, "/deleteUser", opRequest{UID: uid})
}

func (c *Client) post(ctx context.Context, path string, body opRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("account operation %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("account operation %s returned status %d", path, resp.StatusCode)
	}

	var out opResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("account operation %s returned malformed response: %w", path, err)
	}
	if !out.Success {
		return fmt.Errorf("account operation %s rejected: %s", path, out.Error)
	}
	return nil
}
