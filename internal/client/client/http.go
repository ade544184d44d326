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

	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/session"
)

const (
	registerPath = "/api/accounts/register/"
	loginPath    = "/api/accounts/login/"
	profilePath  = "/api/accounts/profile/"
	logoutPath   = "/api/accounts/logout/"
	healthPath   = "/healthz"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

type HTTPClient struct {
	baseURL        *url.URL
	http           *http.Client
	logger         logging.Logger
	onUnauthorized func(ctx context.Context)
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Transport is
// reused as the base of the bearer transport on authenticated calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithUnauthorizedHook registers fn to run after an authenticated call is
// answered with 401. The call still returns ErrUnauthorized.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*session.UserProfile, error) {
	var user session.UserProfile
	if err := c.do(ctx, c.http, http.MethodPost, registerPath, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*session.AuthResult, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var res session.AuthResult
	if err := c.do(ctx, c.http, http.MethodPost, loginPath, req, &res); err != nil {
		return nil, err
	}
	if res.User == nil || res.Token == "" {
		return nil, fmt.Errorf("login response: %w", errIncomplete)
	}
	return &res, nil
}

// FetchProfile resolves token into the user it belongs to.
func (c *HTTPClient) FetchProfile(ctx context.Context, token string) (*session.UserProfile, error) {
	var user session.UserProfile
	if err := c.authed(ctx, token, http.MethodGet, profilePath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) (*session.UserProfile, error) {
	var user session.UserProfile
	if err := c.authed(ctx, token, http.MethodPut, profilePath, upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.authed(ctx, token, http.MethodPost, logoutPath, nil, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, c.http, http.MethodGet, healthPath, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Close drops idle keep-alive connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

var errIncomplete = errors.New("incomplete response")

func (c *HTTPClient) authed(ctx context.Context, token, method, path string, in, out any) error {
	if token == "" {
		return ErrUnauthorized
	}

	hc := &http.Client{
		Timeout: c.http.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.http.Transport,
		},
	}

	err := c.do(ctx, hc, method, path, in, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.logger.Warn(ctx, "server rejected credential", "path", path)
		c.onUnauthorized(ctx)
	}
	return err
}

func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)

	e := &APIError{StatusCode: resp.StatusCode, Detail: payload.Detail}
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		e.kind = ErrUnauthorized
	case resp.StatusCode == http.StatusConflict:
		e.kind = ErrConflict
	case resp.StatusCode == http.StatusBadRequest:
		e.kind = ErrValidation
	case resp.StatusCode >= 500:
		e.kind = ErrUnavailable
	}
	return e
}
