//go:build integration

package api

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/session"
)

// Integration tests require the following environment variables:
// - ATTEND_API_URL: Backend base URL
// - ATTEND_IT_USERNAME, ATTEND_IT_PASSWORD: A test account
// - ATTEND_TENANT: Tenant id, if the backend is multi-tenant
//
// Run with: go test -tags=integration ./internal/api/...

func getTestClient(t *testing.T) (*Client, models.Credentials) {
	baseURL := os.Getenv("ATTEND_API_URL")
	creds := models.Credentials{
		Username: os.Getenv("ATTEND_IT_USERNAME"),
		Password: os.Getenv("ATTEND_IT_PASSWORD"),
		Tenant:   os.Getenv("ATTEND_TENANT"),
	}

	if baseURL == "" || !creds.IsValid() {
		t.Skip("Integration tests require ATTEND_API_URL, ATTEND_IT_USERNAME and ATTEND_IT_PASSWORD")
	}

	return NewClient(session.NewMemoryStore(), WithBaseURL(baseURL)), creds
}

func TestIntegration_Login(t *testing.T) {
	client, creds := getTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Login(ctx, creds)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OTPToken)
	t.Logf("requiredGenerateOTP=%v haveMFA=%v", resp.RequiredGenerateOTP, resp.HaveMFA)
}

func TestIntegration_Login_Invalid(t *testing.T) {
	client, creds := getTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds.Password = "definitely-wrong"
	_, err := client.Login(ctx, creds)
	assert.Error(t, err, "invalid credentials should return error")
	t.Logf("error code: %s", ErrorCode(err))
}

func TestIntegration_VerifyOTP_WrongCode(t *testing.T) {
	client, creds := getTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := client.Login(ctx, creds)
	require.NoError(t, err)

	_, err = client.VerifyOTP(ctx, resp.OTPToken, "000000")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransport)
}
