package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/felixgeelhaar/rolegate/internal/domain"
)

// DashboardData is the role-specific payload behind each dashboard.
// Its shape belongs to the backend and is rendered as-is.
type DashboardData map[string]interface{}

// GetDashboardData fetches GET /{role}/data/
func (c *Client) GetDashboardData(ctx context.Context, role domain.Role) (DashboardData, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/%s/data/", role), nil, true)
	if err != nil {
		return nil, err
	}

	data := DashboardData{}
	if err := parseResponse(resp, &data); err != nil {
		return nil, err
	}
	return data, nil
}
