// Package backend is the HTTP client for the watchlist API's auth
// endpoints. Request and response shapes are consumed as a black box;
// this package only maps transport outcomes onto the error taxonomy the
// session manager depends on.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hkominsky/bullseye-client/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultRequestTimeout = 15 * time.Second

// Client talks to the auth endpoints. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/signup", req, "", &resp, "signup failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, "", &resp, "login failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges the current token for a renewed one. The current
// token rides in the Authorization header.
func (c *Client) Refresh(ctx context.Context, token string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/refresh", nil, token, &resp, "token refresh failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the profile behind a token. OAuth completions only carry a
// token, so this is how the client learns who logged in.
func (c *Client) Me(ctx context.Context, token string) (*credentials.Profile, error) {
	var profile credentials.Profile
	if err := c.get(ctx, "/auth/me", token, &profile, "failed to load user"); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout tells the backend to drop the session. Callers treat failures
// as best-effort; local cleanup proceeds regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.post(ctx, "/auth/logout", nil, token, nil, "logout failed")
}

// ResetPassword requests a password-reset email for the account.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/reset-password", resetPasswordRequest{Email: email}, "", nil, "password reset failed")
}

// ConfirmResetPassword completes a reset with the emailed token.
func (c *Client) ConfirmResetPassword(ctx context.Context, token, newPassword string) error {
	return c.post(ctx, "/auth/confirm-reset-password", confirmResetRequest{Token: token, NewPassword: newPassword}, "", nil, "password reset failed")
}

func (c *Client) post(ctx context.Context, path string, body any, token string, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.post] marshal body")
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.post] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, token, out, fallback)
}

func (c *Client) get(ctx context.Context, path, token string, out any, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.get] build request")
	}
	return c.do(req, token, out, fallback)
}

func (c *Client) do(req *http.Request, token string, out any, fallback string) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", req.URL.Path).Msg("request failed")
		return &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request complete")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &AuthError{Status: resp.StatusCode, Message: errorMessage(resp.Body, fallback)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "[Client.do] decode response")
	}
	return nil
}

func errorMessage(body io.Reader, fallback string) string {
	var envelope errorResponse
	if err := json.NewDecoder(body).Decode(&envelope); err == nil && envelope.Detail != "" {
		return envelope.Detail
	}
	return fallback
}
