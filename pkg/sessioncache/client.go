// Package sessioncache is a Go client for the auth API that keeps the current session
// credential and user profile in a persistent local cache.
package sessioncache

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
	"sync"
	"time"

	"github.com/SscSPs/chat_backend/internal/dto"
	"github.com/SscSPs/chat_backend/internal/utils"
)

const (
	keyToken = "token"
	keyUser  = "user"

	resetPasswordPath = "/reset-password"
)

// ErrMalformedResetToken is returned by ResetPassword before any request when the token
// is not a 64 character hex string.
var ErrMalformedResetToken = errors.New("invalid reset token format")

// ErrNoSessionToken is returned by CompleteExternalLogin when the URL carries no token.
var ErrNoSessionToken = errors.New("no session token in url")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api: %d %s", e.Status, e.Message)
}

// Client calls the auth API and mirrors the resulting session into a Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store

	mu    sync.RWMutex
	token string
	user  *dto.UserResponse
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API at baseURL (for example "http://localhost:5000/api");
// requests go to {baseURL}/auth/...
func New(baseURL string, store Store, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Token returns the cached session credential, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User returns the cached user, or nil.
func (c *Client) User() *dto.UserResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAuthenticated reports whether a session is cached.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != "" && c.user != nil
}

// Restore loads the cached session and checks it against the server. currentURL is the
// page being opened. On the reset-password page nothing is verified. When no session is
// cached and currentURL carries an external login token, that token is consumed and the
// scrubbed URL is returned; otherwise currentURL is returned unchanged.
// A cached session the server rejects is dropped without retry.
func (c *Client) Restore(ctx context.Context, currentURL string) (string, error) {
	u, err := url.Parse(currentURL)
	if err != nil {
		return currentURL, fmt.Errorf("invalid current url: %w", err)
	}

	token, err := c.store.Get(ctx, keyToken)
	if err != nil {
		return currentURL, err
	}
	rawUser, err := c.store.Get(ctx, keyUser)
	if err != nil {
		return currentURL, err
	}

	if u.Path == resetPasswordPath {
		c.setFromStore(token, rawUser)
		return currentURL, nil
	}

	if token == "" {
		if u.Query().Get("token") != "" {
			return c.CompleteExternalLogin(ctx, currentURL)
		}
		return currentURL, nil
	}

	user, err := c.me(ctx, token)
	if err != nil {
		return currentURL, errors.Join(err, c.clear(ctx))
	}
	return currentURL, c.persist(ctx, token, user)
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.UserResponse, error) {
	return c.authenticate(ctx, "/auth/login", dto.LoginRequest{Email: email, Password: password})
}

// Register creates a password account and signs in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*dto.UserResponse, error) {
	return c.authenticate(ctx, "/auth/register", dto.RegisterRequest{Name: name, Email: email, Password: password})
}

// ResetPassword consumes an emailed reset token and signs in with the new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (*dto.UserResponse, error) {
	token = strings.TrimSpace(token)
	if !utils.IsWellFormedResetToken(strings.ToLower(token)) {
		return nil, ErrMalformedResetToken
	}
	return c.authenticate(ctx, "/auth/reset-password", dto.ResetPasswordRequest{Token: token, Password: password})
}

// ForgotPassword requests a reset email and returns the server's message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp dto.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password", "", dto.ForgotPasswordRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// CompleteExternalLogin takes the token from the external login success URL, loads the
// profile it belongs to and caches both. It returns successURL without the token parameter.
func (c *Client) CompleteExternalLogin(ctx context.Context, successURL string) (string, error) {
	u, err := url.Parse(successURL)
	if err != nil {
		return successURL, fmt.Errorf("invalid success url: %w", err)
	}
	q := u.Query()
	token := q.Get("token")
	if token == "" {
		return successURL, ErrNoSessionToken
	}
	q.Del("token")
	u.RawQuery = q.Encode()
	scrubbed := u.String()

	user, err := c.me(ctx, token)
	if err != nil {
		return scrubbed, err
	}
	return scrubbed, c.persist(ctx, token, user)
}

// Logout notifies the server when possible and always drops the cached session.
func (c *Client) Logout(ctx context.Context) error {
	if token := c.Token(); token != "" {
		// The server keeps no session state; its answer does not matter.
		_ = c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
	}
	return c.clear(ctx)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*dto.UserResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return nil, err
	}
	if err := c.persist(ctx, resp.Token, &resp.User); err != nil {
		return nil, err
	}
	return c.User(), nil
}

func (c *Client) me(ctx context.Context, token string) (*dto.UserResponse, error) {
	var resp dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) persist(ctx context.Context, token string, user *dto.UserResponse) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := c.store.Set(ctx, keyToken, token); err != nil {
		return err
	}
	if err := c.store.Set(ctx, keyUser, string(raw)); err != nil {
		return err
	}

	u := *user
	c.mu.Lock()
	c.token, c.user = token, &u
	c.mu.Unlock()
	return nil
}

func (c *Client) setFromStore(token, rawUser string) {
	var user *dto.UserResponse
	if rawUser != "" {
		var u dto.UserResponse
		if json.Unmarshal([]byte(rawUser), &u) == nil {
			user = &u
		}
	}
	c.mu.Lock()
	c.token, c.user = token, user
	c.mu.Unlock()
}

func (c *Client) clear(ctx context.Context) error {
	c.mu.Lock()
	c.token, c.user = "", nil
	c.mu.Unlock()
	return c.store.Clear(ctx)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg dto.MessageResponse
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
