package client

import (
	"context"
	"net/http"

	"github.com/laporwarga/backend/pkg/validation"
)

// Login signs in and remembers the access token for later calls.
// authType is "local" or "ldap"; empty means local.
func (c *Client) Login(ctx context.Context, email, password, authType string) (*Session, error) {
	in := map[string]string{"email": email, "password": password}
	if authType != "" {
		in["auth_type"] = authType
	}
	return c.session(ctx, "/auth/login", in)
}

// Register creates an unverified account; the server mails an OTP.
func (c *Client) Register(ctx context.Context, form validation.RegisterForm) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", form, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, form validation.OTPForm) (*Session, error) {
	return c.session(ctx, "/auth/otp/verify", form)
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/otp/resend", map[string]string{"email": email}, nil)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return c.session(ctx, "/auth/refresh", map[string]string{"refresh_token": refreshToken})
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": refreshToken}, nil)
	if err == nil {
		c.SetToken("")
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.getJSON(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) session(ctx context.Context, path string, in interface{}) (*Session, error) {
	var out Session
	if err := c.doJSON(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}
