package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/qr"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

// OTPState represents the current state of the OTP screen
type OTPState int

const (
	OTPStateEnrolling OTPState = iota
	OTPStateEnrollError
	OTPStateInput
	OTPStateVerifying
	OTPStateExpired
)

// Pairing is the part of the OTP flow driven by the OTP screen.
type Pairing interface {
	State() otp.State
	Enroll(ctx context.Context) (otp.Enrollment, error)
	Verify(ctx context.Context, code string) (otp.Result, error)
	Reset() error
}

// OTP messages
type (
	// OTPEnrolledMsg carries the provisioning URI for the authenticator app
	OTPEnrolledMsg struct {
		URI string
	}

	// OTPVerifiedMsg is sent when the code was accepted and the session stored
	OTPVerifiedMsg struct {
		Result otp.Result
	}

	// OTPErrorMsg is sent when enrollment or verification fails
	OTPErrorMsg struct {
		Err error
	}
)

// OTPModel is the model for the OTP enrollment and code entry screen
type OTPModel struct {
	pairing  Pairing
	messages *i18n.Messages

	codeInput textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      common.FormKeyMap

	state  OTPState
	uri    string
	qrCode string
	err    error

	width  int
	height int
}

// NewOTPModel creates a new OTP screen model for the current pairing state
func NewOTPModel(pairing Pairing, messages *i18n.Messages) OTPModel {
	code := textinput.New()
	code.Placeholder = "123456"
	code.CharLimit = otp.CodeLength
	code.Width = otp.CodeLength + 2
	code.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	m := OTPModel{
		pairing:   pairing,
		messages:  messages,
		codeInput: code,
		spinner:   sp,
		help:      help.New(),
		keys:      common.DefaultFormKeyMap(),
		state:     OTPStateInput,
	}

	switch pairing.State() {
	case otp.StateNeedsEnrollment:
		m.state = OTPStateEnrolling
	case otp.StateExpired:
		m.state = OTPStateExpired
	}

	return m
}

// Init initializes the OTP model
func (m OTPModel) Init() tea.Cmd {
	if m.state == OTPStateExpired {
		return m.restart(otp.ErrTokenExpired)
	}
	if m.state == OTPStateEnrolling {
		return tea.Batch(m.spinner.Tick, enrollCmd(m.pairing))
	}
	return textinput.Blink
}

// Update handles messages for the OTP screen
func (m OTPModel) Update(msg tea.Msg) (OTPModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			return m, m.restart(nil)
		}

		switch m.state {
		case OTPStateEnrollError:
			if key.Matches(msg, m.keys.Submit) {
				m.state = OTPStateEnrolling
				m.err = nil
				return m, tea.Batch(m.spinner.Tick, enrollCmd(m.pairing))
			}
			return m, nil

		case OTPStateInput:
			if key.Matches(msg, m.keys.Submit) {
				code := strings.TrimSpace(m.codeInput.Value())
				if !otp.ValidCode(code) {
					m.err = otp.ErrInvalidCodeFormat
					return m, nil
				}
				m.state = OTPStateVerifying
				m.err = nil
				return m, tea.Batch(m.spinner.Tick, verifyCmd(m.pairing, code))
			}
			var cmd tea.Cmd
			m.codeInput, cmd = m.codeInput.Update(msg)
			return m, cmd
		}
		return m, nil

	case OTPEnrolledMsg:
		m.uri = msg.URI
		if rendered, err := qr.Render(msg.URI); err == nil {
			m.qrCode = rendered
		}
		m.state = OTPStateInput
		return m, textinput.Blink

	case OTPErrorMsg:
		m.err = msg.Err
		switch {
		case errors.Is(msg.Err, otp.ErrTokenExpired), errors.Is(msg.Err, otp.ErrFlowClosed):
			// the token is gone, so the only way forward is a new login
			m.state = OTPStateExpired
			return m, m.restart(otp.ErrTokenExpired)
		case m.state == OTPStateEnrolling:
			m.state = OTPStateEnrollError
		default:
			m.state = OTPStateInput
			m.codeInput.SetValue("")
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == OTPStateEnrolling || m.state == OTPStateVerifying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the OTP screen
func (m OTPModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Two-step verification"))
	content.WriteString("\n")

	switch m.state {
	case OTPStateEnrolling:
		content.WriteString(fmt.Sprintf("%s Preparing your authenticator setup...", m.spinner.View()))

	case OTPStateInput, OTPStateVerifying:
		if m.qrCode != "" {
			content.WriteString(common.SubtitleStyle.Render("Scan this code with your authenticator app"))
			content.WriteString("\n")
			content.WriteString(common.QRStyle.Render(m.qrCode))
			content.WriteString("\n")
			content.WriteString(common.MutedTextStyle.Render(common.Truncate(m.uri, 72)))
			content.WriteString("\n\n")
		}
		content.WriteString(common.SubtitleStyle.Render(m.messages.Text(i18n.KeyCodeFormat)))
		content.WriteString("\n")
		content.WriteString(common.FocusedInputStyle.Render(m.codeInput.View()))
		if m.state == OTPStateVerifying {
			content.WriteString("\n\n")
			content.WriteString(fmt.Sprintf("%s Verifying...", m.spinner.View()))
		}

	case OTPStateEnrollError:
		content.WriteString(common.FormatHelp("enter", "retry"))

	case OTPStateExpired:
		content.WriteString(common.WarningTextStyle.Render(m.messages.Text(i18n.KeyTokenExpired)))
	}

	if m.err != nil && m.state != OTPStateExpired {
		content.WriteString("\n\n")
		content.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))
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

// restart drops the pending OTP token and returns to the login screen.
// reason, and any failure to drop the token, travel as the navigation data
// so the login screen can show them.
func (m OTPModel) restart(reason error) tea.Cmd {
	pairing := m.pairing
	return func() tea.Msg {
		if err := pairing.Reset(); err != nil {
			reason = errors.Join(reason, fmt.Errorf("failed to clear otp token: %w", err))
		}
		if reason == nil {
			return NavigateMsg{Screen: "login"}
		}
		return NavigateMsg{Screen: "login", Data: reason}
	}
}

func enrollCmd(pairing Pairing) tea.Cmd {
	return func() tea.Msg {
		enrollment, err := pairing.Enroll(context.Background())
		if err != nil {
			return OTPErrorMsg{Err: err}
		}
		return OTPEnrolledMsg{URI: enrollment.URI}
	}
}

func verifyCmd(pairing Pairing, code string) tea.Cmd {
	return func() tea.Msg {
		result, err := pairing.Verify(context.Background(), code)
		if err != nil {
			return OTPErrorMsg{Err: err}
		}
		return OTPVerifiedMsg{Result: result}
	}
}
