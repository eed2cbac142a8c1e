package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/checkin"
	"github.com/checkpointhr/attendcli/internal/journal"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/session"
	"github.com/checkpointhr/attendcli/internal/tui/screens"
)

type fakeBackend struct {
	loginResp  *models.LoginResponse
	refreshed  *models.TokenPair
	refreshErr error
	refreshes  int
	checkErr   error
	checks     int
}

func (b *fakeBackend) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	return b.loginResp, nil
}

func (b *fakeBackend) GenerateOTP(ctx context.Context, otpToken string) (*models.OTPEnrollment, error) {
	return &models.OTPEnrollment{OTPAuthURI: "otpauth://totp/Checkpoint:minh?secret=JBSWY3DPEHPK3PXP"}, nil
}

func (b *fakeBackend) VerifyOTP(ctx context.Context, otpToken, code string) (*models.TokenPair, error) {
	return &models.TokenPair{AccessToken: "a", RefreshToken: "r", Roles: []string{models.RoleUser}}, nil
}

func (b *fakeBackend) Refresh(ctx context.Context) (*models.TokenPair, error) {
	b.refreshes++
	return b.refreshed, b.refreshErr
}

func (b *fakeBackend) CheckSession(ctx context.Context) error {
	b.checks++
	return b.checkErr
}

func (b *fakeBackend) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	return nil, nil
}

func (b *fakeBackend) RecordAttendance(ctx context.Context, req models.AttendanceRequest) (*models.AttendanceRecord, error) {
	return &models.AttendanceRecord{ID: 1, FacilityID: req.FacilityID, Type: models.AttendanceCheckIn}, nil
}

type emptyHistory struct{}

func (emptyHistory) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	return nil, nil
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func accessToken(t *testing.T, username string, roles []string, expiresIn time.Duration) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		Username: username,
		Roles:    roles,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestApp(t *testing.T, store session.Store, backend *fakeBackend) *App {
	t.Helper()

	app := NewApp(Deps{
		Store:           store,
		Backend:         backend,
		Flow:            otp.NewFlow(backend, store, nil),
		CheckIn:         checkin.NewService(backend),
		Locator:         location.NewMockProvider(models.NewGeoPoint(21.0285, 105.8542)),
		LocationTimeout: time.Second,
		History:         emptyHistory{},
		Settings:        screens.SettingsInfo{Tenant: "acme", SessionBackend: session.BackendMemory},
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app
}

func storeSession(t *testing.T, store session.Store, roles []string, expiresIn time.Duration) {
	t.Helper()

	require.NoError(t, session.SaveTokens(store, models.TokenPair{
		AccessToken:  accessToken(t, "minh", roles, expiresIn),
		RefreshToken: "refresh",
		Roles:        roles,
	}))
}

func TestNewApp_WithoutSession(t *testing.T) {
	app := newTestApp(t, session.NewMemoryStore(), &fakeBackend{})

	assert.Equal(t, ScreenLogin, app.CurrentScreen())
	assert.NotNil(t, app.Init())
}

func TestNewApp_StoredSessionStartsHome(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser, models.RoleManager}, time.Hour)
	backend := &fakeBackend{}

	app := newTestApp(t, store, backend)

	assert.Equal(t, ScreenHome, app.CurrentScreen())
	assert.Equal(t, otp.DestinationManager, app.destination)
	assert.Equal(t, "minh", app.username)

	// a token far from expiry is checked, not refreshed
	for _, msg := range runCmd(app.Init()) {
		assert.Nil(t, msg)
	}
	assert.Zero(t, backend.refreshes)
	assert.Equal(t, 1, backend.checks)
}

func TestApp_StoredSessionRejected(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	backend := &fakeBackend{checkErr: api.NewAPIError(401, "token revoked")}
	app := newTestApp(t, store, backend)

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	app.Update(msgs[0])

	assert.Equal(t, ScreenLogin, app.CurrentScreen())
	assert.False(t, session.HasSession(store))
}

func TestApp_WindowSizeMsg(t *testing.T) {
	app := NewApp(Deps{Store: session.NewMemoryStore(), Flow: otp.NewFlow(&fakeBackend{}, session.NewMemoryStore(), nil)})
	assert.Equal(t, "Loading...", app.View())

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	updated := model.(*App)

	assert.Equal(t, 100, updated.width)
	assert.Equal(t, 50, updated.height)
	assert.True(t, updated.ready)
}

func TestApp_RefreshExpiringSession(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Minute)
	backend := &fakeBackend{refreshed: &models.TokenPair{
		AccessToken:  accessToken(t, "minh", []string{models.RoleAdmin}, time.Hour),
		RefreshToken: "refresh-2",
		Roles:        []string{models.RoleAdmin},
	}}
	app := newTestApp(t, store, backend)

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, backend.refreshes)

	app.Update(msgs[0])

	assert.Equal(t, ScreenHome, app.CurrentScreen())
	assert.Equal(t, otp.DestinationAdmin, app.destination)
}

func TestApp_RefreshRejectedEndsSession(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Minute)
	backend := &fakeBackend{refreshErr: api.NewAPIError(401, "refresh token revoked")}
	app := newTestApp(t, store, backend)

	msgs := runCmd(app.Init())
	require.Len(t, msgs, 1)
	expired, ok := msgs[0].(SessionExpiredMsg)
	require.True(t, ok)

	app.Update(expired)

	assert.Equal(t, ScreenLogin, app.CurrentScreen())
	assert.False(t, session.HasSession(store))
	assert.Contains(t, app.View(), "Your session has ended")
}

func TestApp_RefreshNetworkErrorKeepsSession(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Minute)
	backend := &fakeBackend{refreshErr: api.ErrTransport}
	app := newTestApp(t, store, backend)

	for _, msg := range runCmd(app.Init()) {
		assert.Nil(t, msg)
	}

	assert.Equal(t, ScreenHome, app.CurrentScreen())
	assert.True(t, session.HasSession(store))
}

func TestApp_HandleNavigation(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	app := newTestApp(t, store, &fakeBackend{})

	tests := []struct {
		screen   string
		expected Screen
	}{
		{"checkin", ScreenCheckIn},
		{"facilities", ScreenFacilities},
		{"history", ScreenHistory},
		{"settings", ScreenSettings},
		{"home", ScreenHome},
	}

	for _, tt := range tests {
		model, _ := app.handleNavigation(tt.screen, nil)
		updated := model.(*App)
		assert.Equal(t, tt.expected, updated.screen, "navigation to %s", tt.screen)
	}
}

func TestApp_HandleNavigation_Back(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	app := newTestApp(t, store, &fakeBackend{})

	app.handleNavigation("history", nil)
	model, _ := app.handleNavigation("back", nil)

	assert.Equal(t, ScreenHome, model.(*App).screen)
}

func TestApp_HandleNavigation_Unknown(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	app := newTestApp(t, store, &fakeBackend{})

	model, _ := app.handleNavigation("nowhere", nil)

	assert.Equal(t, ScreenHome, model.(*App).screen)
}

func TestApp_LeavingCheckInCancelsAttempt(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	app := newTestApp(t, store, &fakeBackend{})

	app.handleNavigation("checkin", nil)
	attempt := app.checkInModel.Attempt()
	require.Equal(t, 1, attempt)

	app.Update(screens.NavigateMsg{Screen: "home"})

	assert.Equal(t, ScreenHome, app.CurrentScreen())
	// a late fix for the closed attempt is dropped by the home screen
	model, cmd := app.Update(screens.CheckInFixMsg{Attempt: attempt})
	assert.Nil(t, cmd)
	assert.Equal(t, ScreenHome, model.(*App).screen)
}

func TestApp_LoginToHome(t *testing.T) {
	store := session.NewMemoryStore()
	backend := &fakeBackend{loginResp: &models.LoginResponse{OTPToken: "otp-token"}}
	app := newTestApp(t, store, backend)

	state, err := app.deps.Flow.Login(context.Background(), models.Credentials{Username: "minh", Password: "secret"})
	require.NoError(t, err)

	app.Update(screens.LoginAcceptedMsg{State: state, Username: "minh"})
	assert.Equal(t, ScreenOTP, app.CurrentScreen())

	result, err := app.deps.Flow.Verify(context.Background(), "123456")
	require.NoError(t, err)

	app.Update(screens.OTPVerifiedMsg{Result: result})

	assert.Equal(t, ScreenHome, app.CurrentScreen())
	assert.Equal(t, otp.DestinationUser, app.destination)
	assert.True(t, session.HasSession(store))
}

func TestApp_ExpiredOTPReturnsToLoginWithReason(t *testing.T) {
	store := session.NewMemoryStore()
	backend := &fakeBackend{loginResp: &models.LoginResponse{OTPToken: "otp-token"}}
	app := newTestApp(t, store, backend)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 60})

	state, err := app.deps.Flow.Login(context.Background(), models.Credentials{Username: "minh", Password: "secret"})
	require.NoError(t, err)
	app.Update(screens.LoginAcceptedMsg{State: state, Username: "minh"})
	require.Equal(t, ScreenOTP, app.CurrentScreen())

	app.Update(screens.NavigateMsg{Screen: "login", Data: otp.ErrTokenExpired})

	assert.Equal(t, ScreenLogin, app.CurrentScreen())
	assert.Contains(t, app.View(), "Your login has expired")
}

func TestApp_SessionExpiredIgnoredOnLogin(t *testing.T) {
	app := newTestApp(t, session.NewMemoryStore(), &fakeBackend{})

	model, cmd := app.Update(SessionExpiredMsg{Err: api.ErrUnauthorized})

	assert.Nil(t, cmd)
	assert.Equal(t, ScreenLogin, model.(*App).screen)
}

func TestApp_LoggedOut(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	app := newTestApp(t, store, &fakeBackend{})
	app.handleNavigation("settings", nil)

	app.Update(screens.LoggedOutMsg{})

	assert.Equal(t, ScreenLogin, app.CurrentScreen())
	assert.Empty(t, app.username)
}

func TestApp_LoggedOutErrorStaysOnSettings(t *testing.T) {
	store := session.NewMemoryStore()
	storeSession(t, store, []string{models.RoleUser}, time.Hour)
	app := newTestApp(t, store, &fakeBackend{})
	app.handleNavigation("settings", nil)

	app.Update(screens.LoggedOutMsg{Err: assert.AnError})

	assert.Equal(t, ScreenSettings, app.CurrentScreen())
}

func TestApp_LanguageChanged(t *testing.T) {
	app := newTestApp(t, session.NewMemoryStore(), &fakeBackend{})

	app.Update(screens.LanguageChangedMsg{Locale: "vi"})

	assert.Equal(t, "vi", app.deps.Messages.Language().String())
}

func TestScreenConstants(t *testing.T) {
	all := []Screen{
		ScreenLogin,
		ScreenOTP,
		ScreenHome,
		ScreenCheckIn,
		ScreenFacilities,
		ScreenHistory,
		ScreenSettings,
	}

	seen := make(map[Screen]bool)
	for _, s := range all {
		assert.False(t, seen[s], "duplicate screen constant")
		seen[s] = true
	}
}
