package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/session"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

// SettingsState represents the current state of the settings screen
type SettingsState int

const (
	SettingsStateReady SettingsState = iota
	SettingsStateConfirmLogout
	SettingsStateLoggingOut
	SettingsStateError
)

// SessionEnder ends the current session.
type SessionEnder interface {
	Logout() error
}

// SettingsInfo is the static configuration shown on the settings screen.
type SettingsInfo struct {
	BaseURL        string
	Tenant         string
	SessionBackend string
	JournalPath    string
	LogFile        string
}

// Settings messages
type (
	// LoggedOutMsg is sent when the session was cleared
	LoggedOutMsg struct {
		Err error
	}

	// LanguageChangedMsg asks the app to switch message language
	LanguageChangedMsg struct {
		Locale string
	}
)

// SettingsModel is the model for the settings screen
type SettingsModel struct {
	store    session.Store
	ender    SessionEnder
	messages *i18n.Messages
	info     SettingsInfo

	help help.Model
	keys settingsKeyMap

	state     SettingsState
	err       error
	claims    *session.Claims
	claimsErr error
	width     int
	height    int
}

// settingsKeyMap defines key bindings for the settings screen
type settingsKeyMap struct {
	Logout   key.Binding
	Language key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultSettingsKeyMap() settingsKeyMap {
	return settingsKeyMap{
		Logout: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sign out"),
		),
		Language: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "switch language"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// NewSettingsModel creates a new settings screen model
func NewSettingsModel(store session.Store, ender SessionEnder, messages *i18n.Messages, info SettingsInfo) SettingsModel {
	m := SettingsModel{
		store:    store,
		ender:    ender,
		messages: messages,
		info:     info,
		help:     help.New(),
		keys:     defaultSettingsKeyMap(),
		state:    SettingsStateReady,
	}
	m.loadClaims()
	return m
}

func (m *SettingsModel) loadClaims() {
	m.claims, m.claimsErr = nil, nil

	token, err := m.store.Get(session.KeyAccessToken)
	if err != nil {
		m.claimsErr = err
		return
	}
	m.claims, m.claimsErr = session.ParseClaims(token)
}

// Init initializes the settings model
func (m SettingsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the settings screen
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case SettingsStateConfirmLogout:
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.state = SettingsStateLoggingOut
				return m, logoutCmd(m.ender)
			case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Back):
				m.state = SettingsStateReady
				return m, nil
			}
			return m, nil

		case SettingsStateLoggingOut:
			return m, nil

		case SettingsStateError:
			m.state = SettingsStateReady
			m.err = nil
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return NavigateMsg{Screen: "home"}
			}

		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Logout):
			m.state = SettingsStateConfirmLogout
			return m, nil

		case key.Matches(msg, m.keys.Language):
			locale := nextLocale(m.messages.Language())
			return m, func() tea.Msg {
				return LanguageChangedMsg{Locale: locale}
			}
		}

	case LoggedOutMsg:
		if msg.Err != nil {
			m.state = SettingsStateError
			m.err = msg.Err
			return m, nil
		}
		m.state = SettingsStateReady
		return m, nil
	}

	return m, nil
}

// SetMessages swaps the message language in place
func (m *SettingsModel) SetMessages(messages *i18n.Messages) {
	m.messages = messages
}

func nextLocale(current language.Tag) string {
	if current == language.Vietnamese {
		return "en"
	}
	return "vi"
}

func logoutCmd(ender SessionEnder) tea.Cmd {
	return func() tea.Msg {
		return LoggedOutMsg{Err: ender.Logout()}
	}
}

// View renders the settings screen
func (m SettingsModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Settings"))
	content.WriteString("\n\n")

	boxStyle := common.BoxStyle.Width(64)
	content.WriteString(boxStyle.Render(m.renderSession()))
	content.WriteString("\n\n")
	content.WriteString(boxStyle.Render(m.renderConfig()))
	content.WriteString("\n\n")

	switch m.state {
	case SettingsStateConfirmLogout:
		confirmBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(common.ColorWarning).
			Padding(1, 2).
			Width(64)

		confirmContent := common.WarningTextStyle.Render("Sign out?") + "\n\n" +
			common.MutedTextStyle.Render("Stored tokens are removed from "+m.info.SessionBackend+" storage.") + "\n\n" +
			common.FormatHelp("y", "confirm") + "  " + common.FormatHelp("n", "cancel")

		content.WriteString(confirmBox.Render(confirmContent))

	case SettingsStateLoggingOut:
		content.WriteString(common.MutedTextStyle.Render("Signing out..."))

	case SettingsStateError:
		content.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))
		content.WriteString("\n")
		content.WriteString(common.MutedTextStyle.Render("Press any key to continue."))

	default:
		content.WriteString(m.help.ShortHelpView([]key.Binding{
			m.keys.Logout, m.keys.Language, m.keys.Back, m.keys.Quit,
		}))
	}

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content.String(),
	)
}

func (m SettingsModel) renderSession() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(common.ColorSecondary)
	b.WriteString(headerStyle.Render("Session"))
	b.WriteString("\n\n")

	if m.claims == nil {
		b.WriteString(common.MutedTextStyle.Render(m.messages.Text(i18n.KeyNoSession)))
		return b.String()
	}

	row := func(label, value string) {
		b.WriteString(common.LabelStyle.Render(label))
		b.WriteString(common.TextStyle.Render(value))
		b.WriteString("\n")
	}

	username := m.claims.Username
	if username == "" {
		username = m.claims.Subject
	}
	row("User", orDash(username))
	row("Tenant", orDash(m.claims.Tenant))
	row("Roles", orDash(strings.Join(m.claims.Roles, ", ")))

	b.WriteString(common.LabelStyle.Render("Expires"))
	if exp := m.claims.Expiry(); exp.IsZero() {
		b.WriteString(common.MutedTextStyle.Render("never"))
	} else if exp.Before(time.Now()) {
		b.WriteString(common.ErrorTextStyle.Render("expired " + exp.Local().Format("2006-01-02 15:04")))
	} else {
		b.WriteString(common.TextStyle.Render(fmt.Sprintf("%s (in %s)",
			exp.Local().Format("2006-01-02 15:04"),
			time.Until(exp).Round(time.Minute))))
	}

	return b.String()
}

func (m SettingsModel) renderConfig() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(common.ColorSecondary)
	b.WriteString(headerStyle.Render("Configuration"))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"API", m.info.BaseURL},
		{"Tenant", m.info.Tenant},
		{"Storage", m.info.SessionBackend},
		{"Journal", m.info.JournalPath},
		{"Log file", m.info.LogFile},
		{"Language", m.messages.Language().String()},
	}
	for i, r := range rows {
		b.WriteString(common.LabelStyle.Render(r[0]))
		b.WriteString(common.TextStyle.Render(common.Truncate(orDash(r[1]), 48)))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
