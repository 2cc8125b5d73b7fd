// Package api is the HTTP client for the KeyWarden server. It keeps the
// bearer token of the current session and maps HTTP statuses back to the
// shared error values, so the CLI handles API failures the same way the
// server-side services report them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/keywarden/internal/common"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Token returns the bearer of the current session, or "" when logged out.
func (c *Client) Token() string {
	return c.token
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Course is a decrypted course as the server returns it.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrInvalidCredentials
	case http.StatusConflict:
		return common.ErrAlreadyExists
	case http.StatusNotFound:
		return common.ErrNotFound
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, er.Error)
	}
	return fmt.Errorf("server error (%d)", resp.StatusCode)
}

func (c *Client) Register(ctx context.Context, username string, password []byte) error {
	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/user/register",
		credentialsRequest{Username: username, Password: string(password)}, &tr)
	if err != nil {
		return err
	}
	c.token = tr.Token
	return nil
}

func (c *Client) Login(ctx context.Context, username string, password []byte) error {
	var tr tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/user/login",
		credentialsRequest{Username: username, Password: string(password)}, &tr)
	if err != nil {
		return err
	}
	c.token = tr.Token
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/user/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var out struct {
		Courses []Course `json:"courses"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/courses", nil, &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

func (c *Client) CreateCourse(ctx context.Context, name string) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/courses", map[string]string{"name": name}, &out)
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) RenameCourse(ctx context.Context, id int64, name string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/courses/%d", id),
		map[string]string{"name": name}, nil)
}

func (c *Client) DeleteCourse(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/courses/%d", id), nil, nil)
}
