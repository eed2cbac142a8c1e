package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/journal"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

const historyLimit = 100

// HistoryState represents the current state of the history screen
type HistoryState int

const (
	HistoryStateLoading HistoryState = iota
	HistoryStateReady
	HistoryStateError
)

// HistorySource returns recent check-in attempts.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// History messages
type (
	// HistoryLoadedMsg is sent when journal entries are read
	HistoryLoadedMsg struct {
		Entries []journal.Entry
	}

	// HistoryErrorMsg is sent when the journal cannot be read
	HistoryErrorMsg struct {
		Err error
	}
)

// HistoryModel shows the local journal of check-in attempts
type HistoryModel struct {
	source   HistorySource
	messages *i18n.Messages

	entries []journal.Entry
	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    common.ListKeyMap

	state  HistoryState
	err    error
	width  int
	height int
}

// NewHistoryModel creates a new history screen model
func NewHistoryModel(source HistorySource, messages *i18n.Messages) HistoryModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "When", Width: 16},
			{Title: "Facility", Width: 22},
			{Title: "Result", Width: 10},
			{Title: "Reason", Width: 20},
			{Title: "Distance", Width: 10},
			{Title: "Recorded", Width: 14},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(common.TableStyles())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	keys := common.DefaultListKeyMap()
	keys.Select.SetEnabled(false)

	return HistoryModel{
		source:   source,
		messages: messages,
		table:    t,
		spinner:  sp,
		help:     help.New(),
		keys:     keys,
		state:    HistoryStateLoading,
	}
}

// Init initializes the history model
func (m HistoryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadHistory())
}

// Update handles messages for the history screen
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if h := m.height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return NavigateMsg{Screen: "home"}
			}

		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			if m.state != HistoryStateLoading {
				m.state = HistoryStateLoading
				return m, tea.Batch(m.spinner.Tick, m.loadHistory())
			}
			return m, nil
		}

	case HistoryLoadedMsg:
		m.state = HistoryStateReady
		m.entries = msg.Entries
		m.table.SetRows(lo.Map(m.entries, func(e journal.Entry, _ int) table.Row {
			return m.row(e)
		}))
		return m, nil

	case HistoryErrorMsg:
		m.state = HistoryStateError
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.state == HistoryStateLoading {
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

func (m HistoryModel) row(e journal.Entry) table.Row {
	facility := e.FacilityName
	if facility == "" && e.FacilityID != 0 {
		facility = fmt.Sprintf("#%d", e.FacilityID)
	}
	if facility == "" {
		facility = "-"
	}

	distance := "-"
	if e.DistanceMeters != nil {
		distance = fmt.Sprintf("%.0f m", *e.DistanceMeters)
	}

	recorded := "-"
	switch {
	case e.Submitted && e.RecordType != "":
		recorded = e.RecordType
	case e.Submitted:
		recorded = "yes"
	case e.Error != "":
		recorded = "failed"
	}

	return table.Row{
		e.AttemptedAt.Local().Format("2006-01-02 15:04"),
		facility,
		e.Verdict,
		e.Reason,
		distance,
		recorded,
	}
}

// View renders the history screen
func (m HistoryModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Check-in history"))
	content.WriteString("\n")

	switch m.state {
	case HistoryStateLoading:
		content.WriteString(fmt.Sprintf("%s Loading history...", m.spinner.View()))

	case HistoryStateError:
		content.WriteString(common.ErrorTextStyle.Render(m.messages.Error(m.err)))

	case HistoryStateReady:
		if len(m.entries) == 0 {
			content.WriteString(common.MutedTextStyle.Render("No check-in attempts yet."))
		} else {
			content.WriteString(m.table.View())
			if e, ok := m.selected(); ok && e.Error != "" {
				content.WriteString("\n")
				content.WriteString(common.ErrorTextStyle.Render(common.Truncate(e.Error, 80)))
			}
		}
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

func (m HistoryModel) selected() (journal.Entry, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return journal.Entry{}, false
	}
	return m.entries[idx], true
}

func (m HistoryModel) loadHistory() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		entries, err := source.Recent(context.Background(), historyLimit)
		if err != nil {
			return HistoryErrorMsg{Err: err}
		}
		return HistoryLoadedMsg{Entries: entries}
	}
}
