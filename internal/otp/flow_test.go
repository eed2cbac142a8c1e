package otp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/session"
)

// mockBackend records calls and returns canned responses.
type mockBackend struct {
	login    *models.LoginResponse
	loginErr error

	enrollment *models.OTPEnrollment
	enrollErr  error

	tokens    *models.TokenPair
	verifyErr error

	loginCalls  int
	enrollCalls int
	verifyCalls int
	lastToken   string
	lastCode    string
}

func (m *mockBackend) Login(_ context.Context, _ models.Credentials) (*models.LoginResponse, error) {
	m.loginCalls++
	return m.login, m.loginErr
}

func (m *mockBackend) GenerateOTP(_ context.Context, otpToken string) (*models.OTPEnrollment, error) {
	m.enrollCalls++
	m.lastToken = otpToken
	return m.enrollment, m.enrollErr
}

func (m *mockBackend) VerifyOTP(_ context.Context, otpToken, code string) (*models.TokenPair, error) {
	m.verifyCalls++
	m.lastToken = otpToken
	m.lastCode = code
	return m.tokens, m.verifyErr
}

func (m *mockBackend) calls() int {
	return m.loginCalls + m.enrollCalls + m.verifyCalls
}

var testCreds = models.Credentials{Username: "jdoe", Password: "secret"}

func newTestFlow(b *mockBackend) (*Flow, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return NewFlow(b, store, nil), store
}

func TestFlow_EnrollmentToVerified(t *testing.T) {
	backend := &mockBackend{
		login:      &models.LoginResponse{OTPToken: "otp-1", RequiredGenerateOTP: true},
		enrollment: &models.OTPEnrollment{OTPAuthURI: "otpauth://totp/CheckpointHR:jdoe?secret=ABC"},
		tokens:     &models.TokenPair{AccessToken: "access", RefreshToken: "refresh", Roles: []string{models.RoleUser}},
	}
	flow, store := newTestFlow(backend)
	ctx := context.Background()

	state, err := flow.Login(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, StateNeedsEnrollment, state)

	otpToken, err := store.Get(session.KeyOTPToken)
	require.NoError(t, err)
	assert.Equal(t, "otp-1", otpToken)

	enrollment, err := flow.Enroll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "otpauth://totp/CheckpointHR:jdoe?secret=ABC", enrollment.URI)
	assert.Equal(t, "otp-1", backend.lastToken)
	assert.Equal(t, StateAwaitingScan, flow.State())

	result, err := flow.Verify(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, StateVerified, flow.State())
	assert.Equal(t, "123456", backend.lastCode)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.NotEmpty(t, result.Tokens.Roles)
	assert.Equal(t, DestinationUser, result.Destination)

	stored, err := session.LoadTokens(store)
	require.NoError(t, err)
	assert.Equal(t, "access", stored.AccessToken)
	assert.Equal(t, []string{models.RoleUser}, stored.Roles)

	_, err = store.Get(session.KeyOTPToken)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFlow_LoginWithoutEnrollment(t *testing.T) {
	backend := &mockBackend{login: &models.LoginResponse{OTPToken: "otp-1", HaveMFA: true}}
	flow, _ := newTestFlow(backend)

	state, err := flow.Login(context.Background(), testCreds)

	require.NoError(t, err)
	assert.Equal(t, StateAwaitingScan, state)
	assert.True(t, flow.HasMFA())

	_, err = flow.Enroll(context.Background())
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Equal(t, 0, backend.enrollCalls)
}

func TestFlow_LoginFailure(t *testing.T) {
	backend := &mockBackend{loginErr: api.NewAPIError(401, "bad credentials", "ERROR_001")}
	flow, store := newTestFlow(backend)

	state, err := flow.Login(context.Background(), testCreds)

	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, StateIdle, state)
	_, err = store.Get(session.KeyOTPToken)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFlow_ExpiredToken(t *testing.T) {
	backend := &mockBackend{
		login:     &models.LoginResponse{OTPToken: "otp-1"},
		verifyErr: api.NewAPIError(400, "OTP token expired", api.CodeOTPExpired),
	}
	flow, store := newTestFlow(backend)
	ctx := context.Background()

	_, err := flow.Login(ctx, testCreds)
	require.NoError(t, err)

	_, err = flow.Verify(ctx, "654321")
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, StateExpired, flow.State())

	_, err = store.Get(session.KeyOTPToken)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.False(t, session.HasSession(store))
}

func TestFlow_ExpiredDuringEnrollment(t *testing.T) {
	backend := &mockBackend{
		login:     &models.LoginResponse{OTPToken: "otp-1", RequiredGenerateOTP: true},
		enrollErr: api.NewAPIError(400, "", api.CodeOTPExpired),
	}
	flow, _ := newTestFlow(backend)

	_, err := flow.Login(context.Background(), testCreds)
	require.NoError(t, err)

	_, err = flow.Enroll(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, StateExpired, flow.State())
}

func TestFlow_WrongCodeIsRetryable(t *testing.T) {
	backend := &mockBackend{
		login:     &models.LoginResponse{OTPToken: "otp-1"},
		verifyErr: api.NewAPIError(400, "invalid code", "ERROR_010"),
	}
	flow, store := newTestFlow(backend)
	ctx := context.Background()

	_, err := flow.Login(ctx, testCreds)
	require.NoError(t, err)

	_, err = flow.Verify(ctx, "111111")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, StateAwaitingScan, flow.State())

	token, err := store.Get(session.KeyOTPToken)
	require.NoError(t, err)
	assert.Equal(t, "otp-1", token)

	backend.verifyErr = nil
	backend.tokens = &models.TokenPair{AccessToken: "a", RefreshToken: "r", Roles: []string{models.RoleManager}}

	result, err := flow.Verify(ctx, "222222")
	require.NoError(t, err)
	assert.Equal(t, DestinationManager, result.Destination)
	assert.Equal(t, 2, backend.verifyCalls)
}

func TestFlow_TransportErrorKeepsState(t *testing.T) {
	transportErr := errors.Join(api.ErrTransport, context.DeadlineExceeded)
	backend := &mockBackend{
		login:     &models.LoginResponse{OTPToken: "otp-1"},
		verifyErr: transportErr,
	}
	flow, _ := newTestFlow(backend)

	_, err := flow.Login(context.Background(), testCreds)
	require.NoError(t, err)

	_, err = flow.Verify(context.Background(), "123456")
	assert.ErrorIs(t, err, api.ErrTransport)
	assert.NotErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, StateAwaitingScan, flow.State())
}

func TestFlow_ServerErrorIsNotInvalidCode(t *testing.T) {
	backend := &mockBackend{
		login:     &models.LoginResponse{OTPToken: "otp-1"},
		verifyErr: api.NewAPIError(503, "maintenance"),
	}
	flow, _ := newTestFlow(backend)

	_, err := flow.Login(context.Background(), testCreds)
	require.NoError(t, err)

	_, err = flow.Verify(context.Background(), "123456")
	assert.ErrorIs(t, err, api.ErrServerError)
	assert.NotErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, StateAwaitingScan, flow.State())
}

func TestFlow_CodeFormatCheckedLocally(t *testing.T) {
	backend := &mockBackend{login: &models.LoginResponse{OTPToken: "otp-1"}}
	flow, _ := newTestFlow(backend)

	_, err := flow.Login(context.Background(), testCreds)
	require.NoError(t, err)

	for _, code := range []string{"", "12345", "1234567", "12a456", " 123456", "１２３４５６"} {
		_, err := flow.Verify(context.Background(), code)
		assert.ErrorIs(t, err, ErrInvalidCodeFormat, "code %q", code)
	}
	assert.Equal(t, 0, backend.verifyCalls)
	assert.Equal(t, StateAwaitingScan, flow.State())
}

func TestFlow_TerminalStatesMakeNoCalls(t *testing.T) {
	ctx := context.Background()

	t.Run("verified", func(t *testing.T) {
		backend := &mockBackend{
			login:  &models.LoginResponse{OTPToken: "otp-1"},
			tokens: &models.TokenPair{AccessToken: "a", RefreshToken: "r"},
		}
		flow, _ := newTestFlow(backend)
		_, err := flow.Login(ctx, testCreds)
		require.NoError(t, err)
		_, err = flow.Verify(ctx, "123456")
		require.NoError(t, err)

		before := backend.calls()
		_, err = flow.Verify(ctx, "123456")
		assert.ErrorIs(t, err, ErrFlowClosed)
		_, err = flow.Enroll(ctx)
		assert.ErrorIs(t, err, ErrFlowClosed)
		_, err = flow.Login(ctx, testCreds)
		assert.ErrorIs(t, err, ErrFlowClosed)
		assert.Equal(t, before, backend.calls())
	})

	t.Run("expired", func(t *testing.T) {
		backend := &mockBackend{
			login:     &models.LoginResponse{OTPToken: "otp-1"},
			verifyErr: api.NewAPIError(400, "", api.CodeOTPExpired),
		}
		flow, _ := newTestFlow(backend)
		_, err := flow.Login(ctx, testCreds)
		require.NoError(t, err)
		_, err = flow.Verify(ctx, "123456")
		require.ErrorIs(t, err, ErrTokenExpired)

		before := backend.calls()
		_, err = flow.Verify(ctx, "123456")
		assert.ErrorIs(t, err, ErrFlowClosed)
		_, err = flow.Enroll(ctx)
		assert.ErrorIs(t, err, ErrFlowClosed)
		assert.Equal(t, before, backend.calls())
	})
}

func TestFlow_MissingOTPTokenExpires(t *testing.T) {
	backend := &mockBackend{login: &models.LoginResponse{OTPToken: "otp-1"}}
	flow, store := newTestFlow(backend)

	_, err := flow.Login(context.Background(), testCreds)
	require.NoError(t, err)
	require.NoError(t, store.Delete(session.KeyOTPToken))

	_, err = flow.Verify(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, StateExpired, flow.State())
	assert.Equal(t, 0, backend.verifyCalls)
}

func TestFlow_ResetAndLogout(t *testing.T) {
	backend := &mockBackend{
		login:     &models.LoginResponse{OTPToken: "otp-1"},
		verifyErr: api.NewAPIError(400, "", api.CodeOTPExpired),
	}
	flow, store := newTestFlow(backend)
	ctx := context.Background()

	_, err := flow.Login(ctx, testCreds)
	require.NoError(t, err)
	_, err = flow.Verify(ctx, "123456")
	require.ErrorIs(t, err, ErrTokenExpired)

	require.NoError(t, flow.Reset())
	assert.Equal(t, StateIdle, flow.State())

	state, err := flow.Login(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingScan, state)

	require.NoError(t, session.SaveTokens(store, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, flow.Logout())
	assert.Equal(t, StateIdle, flow.State())
	assert.False(t, session.HasSession(store))
	_, err = store.Get(session.KeyOTPToken)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestDestinationFor(t *testing.T) {
	tests := []struct {
		roles []string
		want  Destination
	}{
		{[]string{models.RoleUser}, DestinationUser},
		{[]string{models.RoleManager}, DestinationManager},
		{[]string{models.RoleAdmin}, DestinationAdmin},
		{[]string{models.RoleUser, models.RoleManager}, DestinationManager},
		{[]string{models.RoleManager, models.RoleAdmin, models.RoleUser}, DestinationAdmin},
		{nil, DestinationUser},
		{[]string{"AUDITOR"}, DestinationUser},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DestinationFor(tt.roles), "roles %v", tt.roles)
	}
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("000000"))
	assert.True(t, ValidCode("123456"))
	assert.False(t, ValidCode("12345"))
	assert.False(t, ValidCode("abcdef"))
	assert.False(t, ValidCode("12 456"))
	assert.False(t, ValidCode("+12345"))
	assert.False(t, ValidCode("1234.5"))
	assert.False(t, ValidCode("1234567"))
}
