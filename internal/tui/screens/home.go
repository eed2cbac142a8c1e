package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

// MenuItem represents a menu option on the home screen
type MenuItem struct {
	Title       string
	Description string
	Icon        string
	Screen      string // Screen identifier to navigate to
}

// NavigateMsg is sent when navigating to a new screen
type NavigateMsg struct {
	Screen string
	Data   interface{} // Optional data to pass to the target screen
}

// HomeModel is the model for the home/menu screen
type HomeModel struct {
	items       []MenuItem
	cursor      int
	keys        common.MenuKeyMap
	help        help.Model
	destination otp.Destination
	username    string
	width       int
	height      int
}

// NewHomeModel creates a home screen for the role area the user landed in
func NewHomeModel(destination otp.Destination, username string) HomeModel {
	items := []MenuItem{
		{
			Title:       "Check in",
			Description: "Scan a facility QR code to record attendance",
			Icon:        "📍",
			Screen:      "checkin",
		},
		{
			Title:       "Facilities",
			Description: facilitiesDescription(destination),
			Icon:        "🏢",
			Screen:      "facilities",
		},
		{
			Title:       "History",
			Description: "Recent check-in attempts on this device",
			Icon:        "🕘",
			Screen:      "history",
		},
		{
			Title:       "Settings",
			Description: "Session details and sign out",
			Icon:        "⚙️",
			Screen:      "settings",
		},
	}

	return HomeModel{
		items:       items,
		keys:        common.DefaultMenuKeyMap(),
		help:        help.New(),
		destination: destination,
		username:    username,
	}
}

func facilitiesDescription(d otp.Destination) string {
	switch d {
	case otp.DestinationAdmin:
		return "All facilities in the organization"
	case otp.DestinationManager:
		return "Facilities you manage"
	default:
		return "Facilities you can check in at"
	}
}

func areaLabel(d otp.Destination) string {
	switch d {
	case otp.DestinationAdmin:
		return "Admin area"
	case otp.DestinationManager:
		return "Manager area"
	default:
		return "Employee area"
	}
}

// Init initializes the home model
func (m HomeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the home screen
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.items) - 1
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			m.cursor++
			if m.cursor >= len(m.items) {
				m.cursor = 0
			}
			return m, nil

		case key.Matches(msg, m.keys.Select):
			return m, m.navigateToSelected()

		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the home screen
func (m HomeModel) View() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n\n")
	content.WriteString(m.renderMenu())
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

func (m HomeModel) renderHeader() string {
	var b strings.Builder

	b.WriteString(common.TitleStyle.MarginBottom(0).Render("attendcli"))
	b.WriteString("\n")

	area := areaLabel(m.destination)
	if m.username != "" {
		area = fmt.Sprintf("%s · %s", m.username, area)
	}
	b.WriteString(common.MutedTextStyle.Render(area))

	return b.String()
}

func (m HomeModel) renderMenu() string {
	var b strings.Builder

	menuWidth := 54

	for i, item := range m.items {
		titleLine := fmt.Sprintf("%s  %s", item.Icon, item.Title)

		var itemStr string
		if i == m.cursor {
			title := lipgloss.NewStyle().Bold(true).Foreground(common.ColorPrimary).Render("▸ " + titleLine)
			desc := lipgloss.NewStyle().Foreground(common.ColorMuted).PaddingLeft(4).Render(item.Description)
			itemStr = common.FocusedBoxStyle.Width(menuWidth).Render(title + "\n" + desc)
		} else {
			itemStr = lipgloss.NewStyle().
				Width(menuWidth).
				Padding(0, 2).
				Render(common.TextStyle.Render("  " + titleLine))
		}

		b.WriteString(itemStr)
		if i < len(m.items)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m HomeModel) navigateToSelected() tea.Cmd {
	if m.cursor >= 0 && m.cursor < len(m.items) {
		screen := m.items[m.cursor].Screen
		return func() tea.Msg {
			return NavigateMsg{Screen: screen}
		}
	}
	return nil
}

// SelectedItem returns the currently selected menu item
func (m HomeModel) SelectedItem() MenuItem {
	if m.cursor >= 0 && m.cursor < len(m.items) {
		return m.items[m.cursor]
	}
	return MenuItem{}
}

// Destination returns the role area shown by the home screen
func (m HomeModel) Destination() otp.Destination {
	return m.destination
}
