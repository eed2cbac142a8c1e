package api

import (
	"context"
	"fmt"

	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/session"
	"github.com/checkpointhr/attendcli/internal/validate"
)

// Login exchanges a username and password for an OTP token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	if !creds.IsValid() {
		return nil, fmt.Errorf("%w: username and password are required", ErrBadRequest)
	}
	if creds.Tenant == "" {
		creds.Tenant = c.tenant
	}

	data, err := c.post(ctx, "/auth/login", creds, noAuth)
	if err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if err := validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &resp, nil
}

// GenerateOTP requests a new authenticator secret for the OTP token.
func (c *Client) GenerateOTP(ctx context.Context, otpToken string) (*models.OTPEnrollment, error) {
	data, err := c.post(ctx, "/auth/otp/generate", nil, bearer(otpToken))
	if err != nil {
		return nil, err
	}

	var resp models.OTPEnrollment
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	if err := validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return &resp, nil
}

// VerifyOTP submits a time-based code and returns the session tokens.
func (c *Client) VerifyOTP(ctx context.Context, otpToken, code string) (*models.TokenPair, error) {
	data, err := c.post(ctx, "/auth/otp/verify", models.OTPVerifyRequest{
		OTPToken: otpToken,
		Code:     code,
	}, noAuth)
	if err != nil {
		return nil, err
	}

	return decodeTokens(data)
}

// Refresh exchanges the stored refresh token for a new token pair and
// stores it.
func (c *Client) Refresh(ctx context.Context) (*models.TokenPair, error) {
	current, err := session.LoadTokens(c.store)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if current.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrUnauthorized)
	}

	data, err := c.post(ctx, "/auth/refresh", map[string]string{
		"refreshToken": current.RefreshToken,
	}, auth{session: true})
	if err != nil {
		return nil, err
	}

	pair, err := decodeTokens(data)
	if err != nil {
		return nil, err
	}
	if len(pair.Roles) == 0 {
		pair.Roles = current.Roles
	}
	if err := session.SaveTokens(c.store, *pair); err != nil {
		return nil, fmt.Errorf("failed to store refreshed session: %w", err)
	}

	return pair, nil
}

// CheckSession verifies that the stored access token is still accepted.
func (c *Client) CheckSession(ctx context.Context) error {
	a, _, err := c.sessionAuth()
	if err != nil {
		return err
	}

	_, err = c.get(ctx, "/auth/verify", a)
	return err
}

func decodeTokens(data []byte) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := decode(data, &pair); err != nil {
		return nil, err
	}
	if err := validate.Struct(pair); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &pair, nil
}
