// Package otp drives the one-time-password pairing between a password
// login and an authenticated session.
package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/session"
	"github.com/checkpointhr/attendcli/internal/validate"
)

// CodeLength is the number of digits in a time-based code.
const CodeLength = 6

// "number" only admits ASCII digits, unlike "numeric".
var codeTag = fmt.Sprintf("len=%d,number", CodeLength)

// State is a step of the pairing flow.
type State string

const (
	StateIdle            State = "IDLE"
	StateNeedsEnrollment State = "NEEDS_ENROLLMENT"
	StateAwaitingScan    State = "AWAITING_SCAN"
	StateVerified        State = "VERIFIED"
	StateExpired         State = "EXPIRED"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateExpired
}

// Destination is the area a verified user lands in.
type Destination string

const (
	DestinationAdmin   Destination = "admin"
	DestinationManager Destination = "manager"
	DestinationUser    Destination = "user"
)

var (
	// ErrInvalidCodeFormat means the code is not exactly six digits. No
	// request was made.
	ErrInvalidCodeFormat = errors.New("code must be 6 digits")

	// ErrInvalidCode means the backend rejected the code. The user may retry.
	ErrInvalidCode = errors.New("invalid code")

	// ErrTokenExpired means the OTP token expired; the user must log in again.
	ErrTokenExpired = errors.New("otp token expired")

	// ErrFlowClosed is returned for any call after the flow reached
	// VERIFIED or EXPIRED.
	ErrFlowClosed = errors.New("otp flow already finished")

	// ErrWrongState is returned when an operation is not valid in the
	// current state.
	ErrWrongState = errors.New("operation not allowed in current state")
)

// Backend is the subset of the API the flow talks to.
type Backend interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	GenerateOTP(ctx context.Context, otpToken string) (*models.OTPEnrollment, error)
	VerifyOTP(ctx context.Context, otpToken, code string) (*models.TokenPair, error)
}

// Enrollment carries what the user needs to add the account to an
// authenticator app.
type Enrollment struct {
	URI string
}

// Result is the outcome of a successful verification.
type Result struct {
	Tokens      models.TokenPair
	Destination Destination
}

// Flow is the pairing state machine. It is safe for concurrent use; calls
// are serialized.
type Flow struct {
	backend Backend
	store   session.Store
	logger  *zap.Logger

	mu    sync.Mutex
	state State
	mfa   bool
}

// NewFlow creates a Flow in the IDLE state.
func NewFlow(backend Backend, store session.Store, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		backend: backend,
		store:   store,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// HasMFA reports the backend's haveMFA flag from the last login. It is
// informational only.
func (f *Flow) HasMFA() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mfa
}

// Login submits credentials and stores the returned OTP token. Logging in
// again before verification restarts the pairing.
func (f *Flow) Login(ctx context.Context, creds models.Credentials) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Terminal() {
		return f.state, ErrFlowClosed
	}

	resp, err := f.backend.Login(ctx, creds)
	if err != nil {
		return f.state, err
	}

	if err := f.store.Set(session.KeyOTPToken, resp.OTPToken); err != nil {
		return f.state, fmt.Errorf("failed to store otp token: %w", err)
	}

	f.mfa = resp.HaveMFA
	if resp.RequiredGenerateOTP {
		f.state = StateNeedsEnrollment
	} else {
		f.state = StateAwaitingScan
	}

	f.logger.Info("login accepted",
		zap.String("username", creds.Username),
		zap.String("state", string(f.state)),
		zap.Bool("have_mfa", resp.HaveMFA),
	)

	return f.state, nil
}

// Enroll fetches the authenticator provisioning URI. It is valid from
// NEEDS_ENROLLMENT only and moves the flow to AWAITING_SCAN.
func (f *Flow) Enroll(ctx context.Context) (Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Terminal() {
		return Enrollment{}, ErrFlowClosed
	}
	if f.state != StateNeedsEnrollment {
		return Enrollment{}, fmt.Errorf("%w: enroll from %s", ErrWrongState, f.state)
	}

	token, err := f.otpToken()
	if err != nil {
		return Enrollment{}, err
	}

	resp, err := f.backend.GenerateOTP(ctx, token)
	if err != nil {
		if f.expireIf(err) {
			return Enrollment{}, ErrTokenExpired
		}
		return Enrollment{}, err
	}

	f.state = StateAwaitingScan
	f.logger.Info("otp enrollment issued")

	return Enrollment{URI: resp.OTPAuthURI}, nil
}

// Verify submits a six-digit code. It is valid from AWAITING_SCAN only.
//
// On success the tokens and roles are stored, the OTP token is deleted and
// the flow is VERIFIED. If the backend reports the OTP token expired, the
// OTP token is deleted, the flow is EXPIRED and ErrTokenExpired is
// returned. Any other client-error rejection returns ErrInvalidCode and
// leaves the flow awaiting another code. Server and transport failures are
// returned as is, also leaving the state unchanged.
func (f *Flow) Verify(ctx context.Context, code string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Terminal() {
		return Result{}, ErrFlowClosed
	}
	if f.state != StateAwaitingScan {
		return Result{}, fmt.Errorf("%w: verify from %s", ErrWrongState, f.state)
	}
	if !ValidCode(code) {
		return Result{}, ErrInvalidCodeFormat
	}

	token, err := f.otpToken()
	if err != nil {
		return Result{}, err
	}

	pair, err := f.backend.VerifyOTP(ctx, token, code)
	if err != nil {
		if f.expireIf(err) {
			return Result{}, ErrTokenExpired
		}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			f.logger.Info("otp code rejected", zap.String("code", apiErr.Code()))
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
		}
		return Result{}, err
	}

	if err := session.SaveTokens(f.store, *pair); err != nil {
		return Result{}, fmt.Errorf("failed to store session: %w", err)
	}
	if err := f.store.Delete(session.KeyOTPToken); err != nil {
		f.logger.Warn("failed to delete otp token", zap.Error(err))
	}

	f.state = StateVerified
	dest := DestinationFor(pair.Roles)
	f.logger.Info("otp verified", zap.String("destination", string(dest)), zap.Strings("roles", pair.Roles))

	return Result{Tokens: *pair, Destination: dest}, nil
}

// Reset drops the OTP token and returns the flow to IDLE so the user can
// log in again.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateIdle
	f.mfa = false
	return f.store.Delete(session.KeyOTPToken)
}

// Logout clears every session key and returns the flow to IDLE.
func (f *Flow) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateIdle
	f.mfa = false
	return f.store.Clear()
}

func (f *Flow) otpToken() (string, error) {
	token, err := f.store.Get(session.KeyOTPToken)
	if errors.Is(err, session.ErrNotFound) || (err == nil && token == "") {
		f.expire()
		return "", ErrTokenExpired
	}
	if err != nil {
		return "", fmt.Errorf("failed to read otp token: %w", err)
	}
	return token, nil
}

// expireIf moves the flow to EXPIRED when err reports an expired OTP token.
func (f *Flow) expireIf(err error) bool {
	if !errors.Is(err, api.ErrOTPExpired) {
		return false
	}
	f.expire()
	return true
}

func (f *Flow) expire() {
	f.state = StateExpired
	if err := f.store.Delete(session.KeyOTPToken); err != nil {
		f.logger.Warn("failed to delete otp token", zap.Error(err))
	}
	f.logger.Info("otp token expired")
}

// ValidCode reports whether code is exactly six ASCII digits.
func ValidCode(code string) bool {
	return validate.Var(code, codeTag) == nil
}

// DestinationFor picks the landing area for roles: ADMIN over MANAGER
// over USER.
func DestinationFor(roles []string) Destination {
	pair := models.TokenPair{Roles: roles}
	switch {
	case pair.HasRole(models.RoleAdmin):
		return DestinationAdmin
	case pair.HasRole(models.RoleManager):
		return DestinationManager
	default:
		return DestinationUser
	}
}
