package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

// LoginState represents the current state of the login screen
type LoginState int

const (
	LoginStateInput LoginState = iota
	LoginStateSubmitting
	LoginStateError
)

const (
	loginFieldUsername = iota
	loginFieldPassword
	loginFieldTenant
	loginFieldSubmit
	loginFieldCount
)

// Authenticator starts the OTP pairing with a password login.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (otp.State, error)
}

// Login messages
type (
	// LoginAcceptedMsg is sent when the backend accepted the password and
	// the pairing moved on to enrollment or code entry
	LoginAcceptedMsg struct {
		State    otp.State
		Username string
	}

	// LoginErrorMsg is sent when the login call fails
	LoginErrorMsg struct {
		Err error
	}
)

// LoginModel is the model for the login screen
type LoginModel struct {
	auth     Authenticator
	messages *i18n.Messages

	usernameInput textinput.Model
	passwordInput textinput.Model
	tenantInput   textinput.Model
	spinner       spinner.Model
	help          help.Model
	keys          common.FormKeyMap

	focusIndex int
	state      LoginState
	err        error

	width  int
	height int
}

// NewLoginModel creates a new login screen model. tenant pre-fills the
// tenant field.
func NewLoginModel(auth Authenticator, messages *i18n.Messages, tenant string) LoginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 40
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	tenantInput := textinput.New()
	tenantInput.Placeholder = "tenant (optional)"
	tenantInput.CharLimit = 64
	tenantInput.Width = 40
	tenantInput.SetValue(tenant)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	keys := common.DefaultFormKeyMap()
	keys.Back.SetEnabled(false)

	return LoginModel{
		auth:          auth,
		messages:      messages,
		usernameInput: username,
		passwordInput: password,
		tenantInput:   tenantInput,
		spinner:       sp,
		help:          help.New(),
		keys:          keys,
		state:         LoginStateInput,
	}
}

// Init initializes the login model
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login screen
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.state == LoginStateSubmitting {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.focusIndex = (m.focusIndex + 1) % loginFieldCount
			m.updateFocus()
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.focusIndex--
			if m.focusIndex < 0 {
				m.focusIndex = loginFieldCount - 1
			}
			m.updateFocus()
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			if m.focusIndex == loginFieldSubmit || m.canSubmit() {
				return m.submit()
			}
			m.focusIndex = (m.focusIndex + 1) % loginFieldCount
			m.updateFocus()
			return m, nil
		}

	case LoginAcceptedMsg:
		m.state = LoginStateInput
		m.passwordInput.SetValue("")
		return m, nil

	case LoginErrorMsg:
		m.state = LoginStateError
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.state == LoginStateSubmitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	if m.state != LoginStateSubmitting {
		var cmd tea.Cmd
		switch m.focusIndex {
		case loginFieldUsername:
			m.usernameInput, cmd = m.usernameInput.Update(msg)
		case loginFieldPassword:
			m.passwordInput, cmd = m.passwordInput.Update(msg)
		case loginFieldTenant:
			m.tenantInput, cmd = m.tenantInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the login screen
func (m LoginModel) View() string {
	var content strings.Builder

	content.WriteString(common.Logo())
	content.WriteString("\n")
	content.WriteString(common.TitleStyle.Render("Attendance check-in"))
	content.WriteString("\n")
	content.WriteString(common.SubtitleStyle.Render("Sign in with your company account"))
	content.WriteString("\n\n")

	switch m.state {
	case LoginStateInput, LoginStateError:
		content.WriteString(m.renderForm())
	case LoginStateSubmitting:
		content.WriteString(fmt.Sprintf("%s Signing in...", m.spinner.View()))
	}

	content.WriteString("\n\n")
	content.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content.String(),
	)
}

func (m LoginModel) renderForm() string {
	var b strings.Builder

	fields := []struct {
		label string
		input textinput.Model
	}{
		{"Username", m.usernameInput},
		{"Password", m.passwordInput},
		{"Tenant", m.tenantInput},
	}

	for i, f := range fields {
		style := common.InputStyle
		label := common.MutedTextStyle.Render(f.label)
		if m.focusIndex == i {
			style = common.FocusedInputStyle
			label = common.PrimaryTextStyle.Bold(true).Render(f.label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(style.Render(f.input.View()))
		b.WriteString("\n")
	}

	buttonText := "  Sign in  "
	switch {
	case m.focusIndex == loginFieldSubmit:
		b.WriteString(common.ButtonStyle.Render(buttonText))
	case m.canSubmit():
		b.WriteString(common.ButtonStyle.Background(common.ColorBorder).Render(buttonText))
	default:
		b.WriteString(common.DisabledButtonStyle.Render(buttonText))
	}

	if m.state == LoginStateError && m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))
	}

	return b.String()
}

func (m *LoginModel) updateFocus() {
	m.usernameInput.Blur()
	m.passwordInput.Blur()
	m.tenantInput.Blur()

	switch m.focusIndex {
	case loginFieldUsername:
		m.usernameInput.Focus()
	case loginFieldPassword:
		m.passwordInput.Focus()
	case loginFieldTenant:
		m.tenantInput.Focus()
	}
}

func (m LoginModel) canSubmit() bool {
	return m.Credentials().IsValid()
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	if !m.canSubmit() {
		return m, nil
	}

	m.state = LoginStateSubmitting
	m.err = nil

	return m, tea.Batch(
		m.spinner.Tick,
		loginCmd(m.auth, m.Credentials()),
	)
}

func loginCmd(auth Authenticator, creds models.Credentials) tea.Cmd {
	return func() tea.Msg {
		state, err := auth.Login(context.Background(), creds)
		if err != nil {
			return LoginErrorMsg{Err: err}
		}
		return LoginAcceptedMsg{State: state, Username: creds.Username}
	}
}

// Credentials returns the entered credentials
func (m LoginModel) Credentials() models.Credentials {
	return models.Credentials{
		Username: strings.TrimSpace(m.usernameInput.Value()),
		Password: m.passwordInput.Value(),
		Tenant:   strings.TrimSpace(m.tenantInput.Value()),
	}
}

// SetError shows err under the form, e.g. why the previous session ended
func (m *LoginModel) SetError(err error) {
	m.state = LoginStateError
	m.err = err
}
