package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/session"
	"github.com/checkpointhr/attendcli/internal/tui/screens"
)

// refreshWindow is how close to expiry a stored access token is refreshed
// on startup.
const refreshWindow = 2 * time.Minute

// Screen represents the current screen in the TUI.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenOTP
	ScreenHome
	ScreenCheckIn
	ScreenFacilities
	ScreenHistory
	ScreenSettings
)

// Backend is the part of the REST client the app calls directly.
type Backend interface {
	screens.FacilityLister
	Refresh(ctx context.Context) (*models.TokenPair, error)
	CheckSession(ctx context.Context) error
}

// Deps are the services the screens drive.
type Deps struct {
	Store           session.Store
	Backend         Backend
	Flow            *otp.Flow
	CheckIn         screens.CheckInService
	Locator         location.Provider
	LocationTimeout time.Duration
	History         screens.HistorySource
	Messages        *i18n.Messages
	Logger          *zap.Logger
	Settings        screens.SettingsInfo
}

// SessionExpiredMsg is sent when the backend rejected the stored session.
type SessionExpiredMsg struct {
	Err error
}

// sessionRefreshedMsg is sent when the startup refresh succeeded.
type sessionRefreshedMsg struct {
	Tokens models.TokenPair
}

// App is the main application model.
type App struct {
	deps Deps

	screen      Screen
	prevScreen  Screen
	width       int
	height      int
	ready       bool
	destination otp.Destination
	username    string

	// Screen models
	loginModel      screens.LoginModel
	otpModel        screens.OTPModel
	homeModel       screens.HomeModel
	checkInModel    screens.CheckInModel
	facilitiesModel screens.FacilitiesModel
	historyModel    screens.HistoryModel
	settingsModel   screens.SettingsModel
}

// NewApp creates a new application instance. A stored session skips the
// login screen.
func NewApp(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Messages == nil {
		deps.Messages = i18n.New("en")
	}

	app := &App{
		deps:       deps,
		screen:     ScreenLogin,
		loginModel: screens.NewLoginModel(deps.Flow, deps.Messages, deps.Settings.Tenant),
	}

	if pair, err := session.LoadTokens(deps.Store); err == nil {
		app.buildHome(*pair)
		app.screen = ScreenHome
	}

	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	switch a.screen {
	case ScreenHome:
		return tea.Batch(a.homeModel.Init(), a.checkStoredSession())
	default:
		return a.loginModel.Init()
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, a.forwardToCurrentScreen(msg)

	case screens.LoginAcceptedMsg:
		a.deps.Logger.Info("login accepted", zap.String("state", string(msg.State)))
		a.username = msg.Username
		return a.handleNavigation("otp", nil)

	case screens.OTPVerifiedMsg:
		a.buildHome(msg.Result.Tokens)
		return a.handleNavigation("home", nil)

	case screens.LoggedOutMsg:
		if msg.Err != nil {
			return a, a.forwardToCurrentScreen(msg)
		}
		a.deps.Logger.Info("signed out")
		return a.toLogin(nil)

	case screens.LanguageChangedMsg:
		a.deps.Messages = i18n.New(msg.Locale)
		a.settingsModel.SetMessages(a.deps.Messages)
		return a, nil

	case sessionRefreshedMsg:
		a.deps.Logger.Info("session refreshed")
		a.buildHome(msg.Tokens)
		a.homeModel, _ = a.homeModel.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		return a, nil

	case SessionExpiredMsg:
		if a.screen == ScreenLogin || a.screen == ScreenOTP {
			return a, nil
		}
		a.deps.Logger.Warn("session expired", zap.Error(msg.Err))
		if err := a.deps.Flow.Logout(); err != nil {
			a.deps.Logger.Warn("failed to clear session", zap.Error(err))
		}
		err := msg.Err
		if err == nil {
			err = api.ErrUnauthorized
		}
		return a.toLogin(err)

	case screens.NavigateMsg:
		return a.handleNavigation(msg.Screen, msg.Data)
	}

	return a, a.forwardToCurrentScreen(msg)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.screen {
	case ScreenLogin:
		return a.loginModel.View()
	case ScreenOTP:
		return a.otpModel.View()
	case ScreenHome:
		return a.homeModel.View()
	case ScreenCheckIn:
		return a.checkInModel.View()
	case ScreenFacilities:
		return a.facilitiesModel.View()
	case ScreenHistory:
		return a.historyModel.View()
	case ScreenSettings:
		return a.settingsModel.View()
	default:
		return "Unknown screen"
	}
}

func (a *App) forwardToCurrentScreen(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch a.screen {
	case ScreenLogin:
		a.loginModel, cmd = a.loginModel.Update(msg)
	case ScreenOTP:
		a.otpModel, cmd = a.otpModel.Update(msg)
	case ScreenHome:
		a.homeModel, cmd = a.homeModel.Update(msg)
	case ScreenCheckIn:
		a.checkInModel, cmd = a.checkInModel.Update(msg)
	case ScreenFacilities:
		a.facilitiesModel, cmd = a.facilitiesModel.Update(msg)
	case ScreenHistory:
		a.historyModel, cmd = a.historyModel.Update(msg)
	case ScreenSettings:
		a.settingsModel, cmd = a.settingsModel.Update(msg)
	}

	return cmd
}

func (a *App) handleNavigation(screen string, data interface{}) (tea.Model, tea.Cmd) {
	if a.screen == ScreenCheckIn {
		a.checkInModel.Close()
	}

	// "back" must not overwrite prevScreen
	if screen == "back" {
		a.screen = a.prevScreen
		return a, a.forwardToCurrentScreen(tea.WindowSizeMsg{
			Width:  a.width,
			Height: a.height,
		})
	}

	a.prevScreen = a.screen

	var initCmd tea.Cmd

	switch screen {
	case "login":
		reason, _ := data.(error)
		if reason != nil {
			a.deps.Logger.Info("returning to login", zap.Error(reason))
		}
		return a.toLogin(reason)
	case "otp":
		a.screen = ScreenOTP
		a.otpModel = screens.NewOTPModel(a.deps.Flow, a.deps.Messages)
		initCmd = a.otpModel.Init()
	case "home":
		a.screen = ScreenHome
	case "checkin":
		a.screen = ScreenCheckIn
		a.checkInModel = screens.NewCheckInModel(
			a.deps.CheckIn,
			a.deps.Backend,
			a.deps.Locator,
			a.deps.LocationTimeout,
			a.deps.Messages,
		)
		initCmd = a.checkInModel.Init()
	case "facilities":
		a.screen = ScreenFacilities
		a.facilitiesModel = screens.NewFacilitiesModel(a.deps.Backend, a.deps.Messages)
		initCmd = a.facilitiesModel.Init()
	case "history":
		a.screen = ScreenHistory
		a.historyModel = screens.NewHistoryModel(a.deps.History, a.deps.Messages)
		initCmd = a.historyModel.Init()
	case "settings":
		a.screen = ScreenSettings
		a.settingsModel = screens.NewSettingsModel(a.deps.Store, a.deps.Flow, a.deps.Messages, a.deps.Settings)
		initCmd = a.settingsModel.Init()
	default:
		a.deps.Logger.Warn("unknown screen", zap.String("screen", screen))
	}

	sizeCmd := a.forwardToCurrentScreen(tea.WindowSizeMsg{
		Width:  a.width,
		Height: a.height,
	})

	if initCmd != nil {
		return a, tea.Batch(initCmd, sizeCmd)
	}
	return a, sizeCmd
}

// toLogin shows a fresh login screen, optionally explaining why.
func (a *App) toLogin(reason error) (tea.Model, tea.Cmd) {
	if a.screen == ScreenCheckIn {
		a.checkInModel.Close()
	}

	a.screen = ScreenLogin
	a.prevScreen = ScreenLogin
	a.destination = ""
	a.username = ""
	a.loginModel = screens.NewLoginModel(a.deps.Flow, a.deps.Messages, a.deps.Settings.Tenant)
	if reason != nil {
		a.loginModel.SetError(reason)
	}

	sizeCmd := a.forwardToCurrentScreen(tea.WindowSizeMsg{
		Width:  a.width,
		Height: a.height,
	})
	return a, tea.Batch(a.loginModel.Init(), sizeCmd)
}

// buildHome prepares the home screen for the role area of pair.
func (a *App) buildHome(pair models.TokenPair) {
	a.destination = otp.DestinationFor(pair.Roles)
	if claims, err := session.ParseClaims(pair.AccessToken); err == nil && claims.Username != "" {
		a.username = claims.Username
	}
	a.homeModel = screens.NewHomeModel(a.destination, a.username)
}

// checkStoredSession refreshes a stored access token that expires soon and
// asks the backend to confirm any other. Failures other than a rejected
// session keep the current tokens, so the app stays usable offline until
// the next request.
func (a *App) checkStoredSession() tea.Cmd {
	token, err := a.deps.Store.Get(session.KeyAccessToken)
	if err != nil {
		return nil
	}

	backend, logger := a.deps.Backend, a.deps.Logger
	claims, err := session.ParseClaims(token)
	if err != nil || !claims.ExpiresWithin(time.Now(), refreshWindow) {
		return func() tea.Msg {
			err := backend.CheckSession(context.Background())
			switch {
			case err == nil:
				return nil
			case errors.Is(err, api.ErrUnauthorized):
				return SessionExpiredMsg{Err: err}
			default:
				logger.Warn("session check failed", zap.Error(err))
				return nil
			}
		}
	}

	return func() tea.Msg {
		pair, err := backend.Refresh(context.Background())
		switch {
		case err == nil:
			return sessionRefreshedMsg{Tokens: *pair}
		case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrBadRequest):
			return SessionExpiredMsg{Err: err}
		default:
			logger.Warn("session refresh failed", zap.Error(err))
			return nil
		}
	}
}

// CurrentScreen returns the screen being shown.
func (a *App) CurrentScreen() Screen {
	return a.screen
}
