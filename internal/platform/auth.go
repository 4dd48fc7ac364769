package platform

import (
	"context"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request.
// FirstName and LastName are derived from Name for backends that store them
// separately.
type RegisterRequest struct {
	Name      string      `json:"name"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
}

// TokenResponse is the body returned by login and registration
type TokenResponse struct {
	Access string `json:"access"`
}

// CurrentUser is the body returned by GET /user/
type CurrentUser = domain.UserProfile

// Login authenticates and returns the issued bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login/", LoginRequest{
		Email:    email,
		Password: password,
	}, false)
	if err != nil {
		return nil, err
	}

	return decodeToken(resp)
}

// Register creates an account with the given role and returns its token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if req.FirstName == "" && req.LastName == "" {
		req.FirstName, req.LastName = domain.SplitName(req.Name)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/register/", req, false)
	if err != nil {
		return nil, err
	}

	return decodeToken(resp)
}

// Logout tells the backend the current token is no longer in use
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/logout/", nil, true)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// GetCurrentUser retrieves the account behind the current token
func (c *Client) GetCurrentUser(ctx context.Context) (*CurrentUser, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/user/", nil, true)
	if err != nil {
		return nil, err
	}

	var user CurrentUser
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func decodeToken(resp *http.Response) (*TokenResponse, error) {
	var tokenResp TokenResponse
	if err := parseResponse(resp, &tokenResp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(tokenResp.Access) == "" {
		return nil, errors.New(errors.ErrCodeProtocol, "server response did not include an access token")
	}
	return &tokenResp, nil
}
