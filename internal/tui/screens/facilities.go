package screens

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/checkpointhr/attendcli/internal/facility"
	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/qr"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

// FacilitiesState represents the current state of the facilities screen
type FacilitiesState int

const (
	FacilitiesStateLoading FacilitiesState = iota
	FacilitiesStateReady
	FacilitiesStateShowQR
	FacilitiesStateError
)

// Facilities messages
type (
	// FacilitiesLoadedMsg is sent when facilities are fetched
	FacilitiesLoadedMsg struct {
		Facilities []models.Facility
	}

	// FacilitiesErrorMsg is sent when fetching fails
	FacilitiesErrorMsg struct {
		Err error
	}

	// FacilityQRSavedMsg is sent after a QR code PNG is written
	FacilityQRSavedMsg struct {
		Path string
		Err  error
	}
)

// qrPNGSize is the edge length of exported QR images in pixels.
const qrPNGSize = 512

// FacilitiesModel lists the facilities of the session's role scope and can
// show the QR code posted at each of them.
type FacilitiesModel struct {
	lister   FacilityLister
	messages *i18n.Messages

	facilities []models.Facility
	table      table.Model
	spinner    spinner.Model
	help       help.Model
	keys       common.ListKeyMap
	save       key.Binding

	// exportDir receives saved QR images.
	exportDir string

	state  FacilitiesState
	err    error
	qrCode string
	saved  string
	width  int
	height int
}

// NewFacilitiesModel creates a new facilities screen model
func NewFacilitiesModel(lister FacilityLister, messages *i18n.Messages) FacilitiesModel {
	t := table.New(
		table.WithColumns(facilityColumns(0)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(common.TableStyles())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	return FacilitiesModel{
		lister:   lister,
		messages: messages,
		table:    t,
		spinner:  sp,
		help:     help.New(),
		keys:     common.DefaultListKeyMap(),
		save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save PNG"),
		),
		exportDir: ".",
		state:     FacilitiesStateLoading,
	}
}

func facilityColumns(width int) []table.Column {
	nameWidth := 24
	addrWidth := 30
	if width > 0 {
		// id + radius + active columns plus borders take about 36 cells
		rest := width - 36
		if rest > 40 {
			nameWidth = rest * 2 / 5
			addrWidth = rest - nameWidth
		}
	}
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: nameWidth},
		{Title: "Address", Width: addrWidth},
		{Title: "Radius", Width: 8},
		{Title: "Active", Width: 6},
	}
}

// Init initializes the facilities model
func (m FacilitiesModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadFacilities(),
	)
}

// Update handles messages for the facilities screen
func (m FacilitiesModel) Update(msg tea.Msg) (FacilitiesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(facilityColumns(msg.Width))
		if h := m.height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if m.state == FacilitiesStateShowQR {
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Select) {
				m.state = FacilitiesStateReady
				m.qrCode = ""
				m.saved = ""
				m.err = nil
				return m, nil
			}
			if key.Matches(msg, m.save) {
				if f := m.SelectedFacility(); f != nil {
					return m, saveFacilityQR(*f, m.exportDir)
				}
				return m, nil
			}
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return NavigateMsg{Screen: "home"}
			}

		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			if m.state == FacilitiesStateReady || m.state == FacilitiesStateError {
				m.state = FacilitiesStateLoading
				return m, tea.Batch(m.spinner.Tick, m.loadFacilities())
			}
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if m.state != FacilitiesStateReady {
				return m, nil
			}
			f := m.SelectedFacility()
			if f == nil {
				return m, nil
			}
			code, err := facilityQR(*f)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.qrCode = code
			m.state = FacilitiesStateShowQR
			return m, nil
		}

	case FacilitiesLoadedMsg:
		m.state = FacilitiesStateReady
		m.err = nil
		m.facilities = msg.Facilities
		m.updateTable()
		return m, nil

	case FacilitiesErrorMsg:
		m.state = FacilitiesStateError
		m.err = msg.Err
		return m, nil

	case FacilityQRSavedMsg:
		m.err = msg.Err
		m.saved = msg.Path
		return m, nil

	case spinner.TickMsg:
		if m.state == FacilitiesStateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the facilities screen
func (m FacilitiesModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Facilities"))
	content.WriteString("\n")

	switch m.state {
	case FacilitiesStateLoading:
		content.WriteString(fmt.Sprintf("%s Loading facilities...", m.spinner.View()))

	case FacilitiesStateError:
		content.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))
		content.WriteString("\n\n")
		content.WriteString(common.FormatHelp("r", "retry"))

	case FacilitiesStateReady:
		if len(m.facilities) == 0 {
			content.WriteString(common.MutedTextStyle.Render(m.messages.Text(i18n.KeyNoFacilities)))
		} else {
			active := lo.CountBy(m.facilities, func(f models.Facility) bool { return f.Active })
			content.WriteString(common.MutedTextStyle.Render(fmt.Sprintf("%d facilities, %d active", len(m.facilities), active)))
			content.WriteString("\n\n")
			content.WriteString(m.table.View())
		}
		if m.err != nil {
			content.WriteString("\n\n")
			content.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))
		}

	case FacilitiesStateShowQR:
		if f := m.SelectedFacility(); f != nil {
			content.WriteString(common.SubtitleStyle.Render(f.Name))
			content.WriteString("\n")
		}
		content.WriteString(common.QRStyle.Render(m.qrCode))
		content.WriteString("\n\n")
		if m.saved != "" {
			content.WriteString(common.SuccessTextStyle.Render("Saved " + m.saved))
			content.WriteString("\n")
		}
		if m.err != nil {
			content.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))
			content.WriteString("\n")
		}
		content.WriteString(common.FormatHelp("s", "save PNG") + "  " + common.FormatHelp("esc", "back to list"))
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

func (m *FacilitiesModel) updateTable() {
	rows := lo.Map(m.facilities, func(f models.Facility, _ int) table.Row {
		active := "no"
		if f.Active {
			active = "yes"
		}
		return table.Row{
			fmt.Sprintf("%d", f.ID),
			f.Name,
			f.Address,
			fmt.Sprintf("%.0f m", f.AllowedRadius),
			active,
		}
	})
	m.table.SetRows(rows)
}

func (m FacilitiesModel) loadFacilities() tea.Cmd {
	lister := m.lister
	return func() tea.Msg {
		facilities, err := lister.ListFacilities(context.Background())
		if err != nil {
			return FacilitiesErrorMsg{Err: err}
		}
		return FacilitiesLoadedMsg{Facilities: facilities}
	}
}

// facilityQR renders the check-in QR code for f.
func facilityQR(f models.Facility) (string, error) {
	payload, err := facility.EncodePayload(f)
	if err != nil {
		return "", err
	}
	return qr.Render(payload)
}

// saveFacilityQR writes the check-in QR code for f as a PNG into dir.
func saveFacilityQR(f models.Facility, dir string) tea.Cmd {
	return func() tea.Msg {
		payload, err := facility.EncodePayload(f)
		if err != nil {
			return FacilityQRSavedMsg{Err: err}
		}
		data, err := qr.PNG(payload, qrPNGSize)
		if err != nil {
			return FacilityQRSavedMsg{Err: err}
		}
		path := filepath.Join(dir, fmt.Sprintf("facility-%d-qr.png", f.ID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return FacilityQRSavedMsg{Err: fmt.Errorf("failed to save QR code: %w", err)}
		}
		return FacilityQRSavedMsg{Path: path}
	}
}

// SelectedFacility returns the facility under the cursor
func (m FacilitiesModel) SelectedFacility() *models.Facility {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.facilities) {
		return nil
	}
	f := m.facilities[idx]
	return &f
}
