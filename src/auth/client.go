package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sceptre-labs/sceptre/src/dispatch"
)

// Client performs the login and signup calls. It holds no session state;
// custody of what it returns belongs to a Store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: dispatch.DefaultTimeout,
		},
	}
}

// Login exchanges credentials for a session. The service takes an
// OAuth2-style url-encoded form and returns the token with the profile it
// was issued to.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequest("POST", c.baseURL+"/api/login", strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := dispatch.Do(ctx, c.httpClient, req, "")
	if err != nil {
		return Session{}, fmt.Errorf("login failed: %w", err)
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		User        User   `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Session{}, fmt.Errorf("login failed: %w", &dispatch.ParseError{Err: err})
	}

	sess := Session{Token: resp.AccessToken, User: resp.User}
	if !sess.Valid() {
		return Session{}, fmt.Errorf("login failed: %w", &dispatch.ParseError{Err: fmt.Errorf("incomplete session in response")})
	}
	return sess, nil
}

// Signup registers a new account. The service acknowledges without issuing
// a session; the caller logs in afterwards.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) error {
	payload, err := json.Marshal(map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	})
	if err != nil {
		return fmt.Errorf("marshal signup request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/api/signup", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := dispatch.Do(ctx, c.httpClient, req, ""); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return nil
}
