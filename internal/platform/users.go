package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/rolegate/internal/domain"
)

// ListUsers returns every account (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/admin/users/", nil, true)
	if err != nil {
		return nil, err
	}

	var users []domain.UserProfile
	if err := parseResponse(resp, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one account (admin only)
func (c *Client) GetUser(ctx context.Context, id domain.ID) (*domain.UserProfile, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, userPath(id), nil, true)
	if err != nil {
		return nil, err
	}

	var user domain.UserProfile
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser adds an account (admin only)
func (c *Client) CreateUser(ctx context.Context, in domain.UserInput) (*domain.UserProfile, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/admin/users/", in.Gate(), true)
	if err != nil {
		return nil, err
	}

	var user domain.UserProfile
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser patches an account (admin only)
func (c *Client) UpdateUser(ctx context.Context, id domain.ID, in domain.UserInput) (*domain.UserProfile, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, userPath(id), in.Gate(), true)
	if err != nil {
		return nil, err
	}

	var user domain.UserProfile
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account (admin only)
func (c *Client) DeleteUser(ctx context.Context, id domain.ID) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, userPath(id), nil, true)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

func userPath(id domain.ID) string {
	return fmt.Sprintf("/admin/users/%s/", url.PathEscape(id.String()))
}
