// Package identitysdk is a small Go client for the StudyHall identity
// service. It covers the unauthenticated surface (login, refresh, tenant
// resolution, password reset) and bearer-authenticated calls.
package identitysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is returned for any non-2xx response carrying the standard error
// body.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity: %s (%d): %s", e.Code, e.StatusCode, e.Description)
}

// Client talks to one identity service instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a client with a sane default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates an identifier and password. Domain narrows the lookup
// to one tenant and may be empty for system administrators.
func (c *Client) Login(ctx context.Context, username, password, domain string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.post(ctx, "/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
		"domain":   domain,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.post(ctx, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": refreshToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword rotates the authenticated principal's password. Current may
// be empty only when the account carries the forced-change flag.
func (c *Client) ChangePassword(ctx context.Context, accessToken, current, newPassword, confirm string) error {
	return c.post(ctx, "/v1/auth/change-password", accessToken, map[string]string{
		"current_password": current,
		"new_password":     newPassword,
		"confirm_password": confirm,
	}, nil)
}

// RequestPasswordReset asks for a reset code to be emailed. The response is
// identical whether or not the email matches an account.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/auth/forgot-password", "", map[string]string{
		"email": email,
	}, nil)
}

// ResetPassword redeems an emailed reset code and returns fresh tokens.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword, confirm string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.post(ctx, "/v1/auth/reset-password", "", map[string]string{
		"email":            email,
		"otp":              otp,
		"new_password":     newPassword,
		"confirm_password": confirm,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveTenant maps a hostname to its tenant. A 404 means the domain is
// unknown or the tenant is not active.
func (c *Client) ResolveTenant(ctx context.Context, domain string) (*TenantResponse, error) {
	u := c.BaseURL + "/v1/tenants/resolve?domain=" + url.QueryEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out TenantResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path, accessToken string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        apiErr.Error,
			Description: apiErr.ErrorDescription,
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
