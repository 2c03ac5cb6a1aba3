package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/laporwarga/backend/pkg/validation"
)

func (c *Client) ListUsers(ctx context.Context, filter UserFilter) (*Page[User], error) {
	q := filter.ListOptions.values()
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Role != "" {
		q.Set("role", filter.Role)
	}
	var out Page[User]
	if err := c.getJSON(ctx, "/users", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	var out User
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, req UpdateUserRequest) (*User, error) {
	var out User
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var out User
	if err := c.getJSON(ctx, "/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile saves name and phone; photo may be nil to keep the current one.
func (c *Client) UpdateProfile(ctx context.Context, form validation.ProfileForm, photo *File) (*User, error) {
	fields := map[string]string{"name": form.Name}
	if form.Phone != "" {
		fields["phone"] = form.Phone
	}
	var out User
	if err := c.doMultipart(ctx, http.MethodPut, "/profile", fields, "photo", photo, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, form validation.PasswordChangeForm) error {
	return c.doJSON(ctx, http.MethodPost, "/profile/password", form, nil)
}

// DashboardStats returns server-side aggregates; dates are YYYY-MM-DD or empty.
func (c *Client) DashboardStats(ctx context.Context, startDate, endDate string) (*DashboardStats, error) {
	q := ListOptions{}.values()
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	var out DashboardStats
	if err := c.getJSON(ctx, "/dashboard/stats", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
