// Package api is a thin HTTP client for the credkeeper REST endpoints,
// used by the credctl command.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AuthResult mirrors the JSON body of a successful login or refresh call.
type AuthResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

type apiError struct {
	Message string `json:"message"`
}

// Client talks to a credkeeper server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Message == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return fmt.Errorf("server returned %s: %s", resp.Status, e.Message)
}

// Register submits a registration request and returns the confirmation
// token from the response. The confirmation link itself is delivered out
// of band.
func (c *Client) Register(ctx context.Context, firstName, lastName, email string, password []byte) (string, error) {
	body := map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   string(password),
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.postJSON(ctx, "/api/v1/registration", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Confirm consumes a confirmation token.
func (c *Client) Confirm(ctx context.Context, token string) error {
	u := c.baseURL + "/api/v1/registration/confirm?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email string, password []byte) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": string(password)}
	var out AuthResult
	if err := c.postJSON(ctx, "/api/v1/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var out AuthResult
	if err := c.postJSON(ctx, "/api/v1/auth/refresh", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
