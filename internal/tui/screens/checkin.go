package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/checkpointhr/attendcli/internal/checkin"
	"github.com/checkpointhr/attendcli/internal/facility"
	"github.com/checkpointhr/attendcli/internal/i18n"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/qr"
	"github.com/checkpointhr/attendcli/internal/tui/common"
)

// CheckInState represents the current state of the check-in screen
type CheckInState int

const (
	CheckInStatePreparing CheckInState = iota
	CheckInStateReady
	CheckInStateScanning
	CheckInStateDecided
	CheckInStateSubmitting
	CheckInStateRecorded
	CheckInStateError
)

// FacilityLister loads the facilities visible to the current session.
type FacilityLister interface {
	ListFacilities(ctx context.Context) ([]models.Facility, error)
}

// CheckInService decides scans and submits authorized check-ins.
type CheckInService interface {
	DecideScan(ctx context.Context, fix location.Fix, raw string, facilities []models.Facility) checkin.Decision
	Submit(ctx context.Context, d checkin.Decision) (*models.AttendanceRecord, error)
}

// Check-in messages. Every message carries the attempt it belongs to;
// results from an earlier attempt are dropped.
type (
	// CheckInFixMsg is sent when position acquisition finishes
	CheckInFixMsg struct {
		Attempt int
		Fix     location.Fix
	}

	// CheckInFacilitiesMsg is sent when the facility list is loaded
	CheckInFacilitiesMsg struct {
		Attempt    int
		Facilities []models.Facility
		Err        error
	}

	// CheckInDecisionMsg carries the gate decision for a scan
	CheckInDecisionMsg struct {
		Attempt  int
		Decision checkin.Decision
	}

	// CheckInScanErrorMsg is sent when a QR image could not be read
	CheckInScanErrorMsg struct {
		Attempt int
		Err     error
	}

	// CheckInRecordedMsg is sent when the backend recorded attendance
	CheckInRecordedMsg struct {
		Attempt int
		Record  models.AttendanceRecord
	}

	// CheckInSubmitErrorMsg is sent when the submission fails
	CheckInSubmitErrorMsg struct {
		Attempt int
		Err     error
	}
)

// CheckInModel is the model for the check-in screen
type CheckInModel struct {
	service  CheckInService
	lister   FacilityLister
	locator  location.Provider
	timeout  time.Duration
	messages *i18n.Messages

	scanInput textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      common.CheckInKeyMap

	state   CheckInState
	attempt int
	ctx     context.Context
	cancel  context.CancelFunc

	fix        *location.Fix
	facilities []models.Facility
	loaded     bool
	decision   *checkin.Decision
	record     *models.AttendanceRecord
	err        error

	width  int
	height int
}

// NewCheckInModel creates a new check-in screen model
func NewCheckInModel(service CheckInService, lister FacilityLister, locator location.Provider, timeout time.Duration, messages *i18n.Messages) CheckInModel {
	in := textinput.New()
	in.Placeholder = `QR payload {"id":...} or path to a photo of the code`
	in.CharLimit = 4096
	in.Width = 60
	in.PromptStyle = lipgloss.NewStyle().Foreground(common.ColorSecondary)
	in.TextStyle = lipgloss.NewStyle().Foreground(common.ColorForeground)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(common.ColorPrimary)

	return CheckInModel{
		service:   service,
		lister:    lister,
		locator:   locator,
		timeout:   timeout,
		messages:  messages,
		scanInput: in,
		spinner:   sp,
		help:      help.New(),
		keys:      common.DefaultCheckInKeyMap(),
		state:     CheckInStatePreparing,
	}
}

// Init starts the first attempt
func (m *CheckInModel) Init() tea.Cmd {
	return m.prepare()
}

// prepare cancels any running attempt and starts a new one: position and
// facilities are fetched in parallel.
func (m *CheckInModel) prepare() tea.Cmd {
	m.Close()

	m.attempt++
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.state = CheckInStatePreparing
	m.fix = nil
	m.facilities = nil
	m.loaded = false
	m.decision = nil
	m.record = nil
	m.err = nil
	m.scanInput.SetValue("")

	return tea.Batch(
		m.spinner.Tick,
		acquireCmd(m.ctx, m.attempt, m.locator, m.timeout),
		loadFacilitiesCmd(m.ctx, m.attempt, m.lister),
	)
}

// Close cancels the running attempt, if any.
func (m CheckInModel) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages for the check-in screen
func (m CheckInModel) Update(msg tea.Msg) (CheckInModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case CheckInFixMsg:
		if msg.Attempt != m.attempt {
			return m, nil
		}
		fix := msg.Fix
		m.fix = &fix
		return m, m.maybeReady()

	case CheckInFacilitiesMsg:
		if msg.Attempt != m.attempt {
			return m, nil
		}
		if msg.Err != nil {
			m.state = CheckInStateError
			m.err = msg.Err
			return m, nil
		}
		m.facilities = msg.Facilities
		m.loaded = true
		return m, m.maybeReady()

	case CheckInDecisionMsg:
		if msg.Attempt != m.attempt {
			return m, nil
		}
		d := msg.Decision
		m.decision = &d
		m.state = CheckInStateDecided
		return m, nil

	case CheckInScanErrorMsg:
		if msg.Attempt != m.attempt {
			return m, nil
		}
		m.err = msg.Err
		m.state = CheckInStateReady
		m.scanInput.Focus()
		return m, textinput.Blink

	case CheckInRecordedMsg:
		if msg.Attempt != m.attempt {
			return m, nil
		}
		record := msg.Record
		m.record = &record
		m.state = CheckInStateRecorded
		return m, nil

	case CheckInSubmitErrorMsg:
		if msg.Attempt != m.attempt {
			return m, nil
		}
		m.err = msg.Err
		m.state = CheckInStateDecided
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.state == CheckInStateReady {
		var cmd tea.Cmd
		m.scanInput, cmd = m.scanInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m CheckInModel) handleKey(msg tea.KeyMsg) (CheckInModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.Close()
		return m, func() tea.Msg {
			return NavigateMsg{Screen: "home"}
		}

	case key.Matches(msg, m.keys.Retry):
		if m.state != CheckInStateSubmitting {
			return m, m.prepare()
		}
		return m, nil
	}

	switch m.state {
	case CheckInStateReady:
		if key.Matches(msg, m.keys.Scan) {
			raw := strings.TrimSpace(m.scanInput.Value())
			if raw == "" {
				return m, nil
			}
			m.state = CheckInStateScanning
			m.err = nil
			m.scanInput.Blur()
			return m, tea.Batch(m.spinner.Tick, m.scanCmd(raw))
		}
		var cmd tea.Cmd
		m.scanInput, cmd = m.scanInput.Update(msg)
		return m, cmd

	case CheckInStateDecided:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			if m.decision == nil || !m.decision.Authorized() {
				return m, nil
			}
			m.state = CheckInStateSubmitting
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, submitCmd(m.ctx, m.attempt, m.service, *m.decision))
		case key.Matches(msg, m.keys.Scan):
			m.decision = nil
			m.err = nil
			m.state = CheckInStateReady
			m.scanInput.SetValue("")
			m.scanInput.Focus()
			return m, textinput.Blink
		}

	case CheckInStateRecorded:
		if key.Matches(msg, m.keys.Scan) {
			m.Close()
			return m, func() tea.Msg {
				return NavigateMsg{Screen: "home"}
			}
		}
	}

	return m, nil
}

func (m *CheckInModel) maybeReady() tea.Cmd {
	if m.fix == nil || !m.loaded || m.state != CheckInStatePreparing {
		return nil
	}
	m.state = CheckInStateReady
	m.scanInput.Focus()
	return textinput.Blink
}

func (m CheckInModel) busy() bool {
	switch m.state {
	case CheckInStatePreparing, CheckInStateScanning, CheckInStateSubmitting:
		return true
	}
	return false
}

// scanCmd reads a pasted payload or decodes the QR code in an image file,
// then asks the service for a decision.
func (m CheckInModel) scanCmd(raw string) tea.Cmd {
	ctx, attempt, service := m.ctx, m.attempt, m.service
	fix := location.Failed(location.ErrUnavailable)
	if m.fix != nil {
		fix = *m.fix
	}
	facilities := m.facilities

	return func() tea.Msg {
		payload := raw
		if !looksLikePayload(raw) {
			decoded, err := qr.DecodeFile(raw)
			if err != nil {
				return CheckInScanErrorMsg{Attempt: attempt, Err: err}
			}
			payload = decoded
		}
		return CheckInDecisionMsg{
			Attempt:  attempt,
			Decision: service.DecideScan(ctx, fix, payload, facilities),
		}
	}
}

func looksLikePayload(raw string) bool {
	return strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, `"`)
}

func acquireCmd(ctx context.Context, attempt int, locator location.Provider, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		return CheckInFixMsg{Attempt: attempt, Fix: location.Acquire(ctx, locator, timeout)}
	}
}

func loadFacilitiesCmd(ctx context.Context, attempt int, lister FacilityLister) tea.Cmd {
	return func() tea.Msg {
		facilities, err := lister.ListFacilities(ctx)
		return CheckInFacilitiesMsg{Attempt: attempt, Facilities: facilities, Err: err}
	}
}

func submitCmd(ctx context.Context, attempt int, service CheckInService, d checkin.Decision) tea.Cmd {
	return func() tea.Msg {
		record, err := service.Submit(ctx, d)
		if err != nil {
			return CheckInSubmitErrorMsg{Attempt: attempt, Err: err}
		}
		return CheckInRecordedMsg{Attempt: attempt, Record: *record}
	}
}

// View renders the check-in screen
func (m CheckInModel) View() string {
	var content strings.Builder

	content.WriteString(common.TitleStyle.Render("Check in"))
	content.WriteString("\n")

	switch m.state {
	case CheckInStatePreparing:
		content.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.preparingStatus()))

	case CheckInStateReady, CheckInStateScanning:
		content.WriteString(m.renderStatus())
		content.WriteString("\n\n")
		content.WriteString(common.SubtitleStyle.Render("Paste the facility QR payload or enter the path to a photo of it"))
		content.WriteString("\n")
		content.WriteString(common.FocusedInputStyle.Render(m.scanInput.View()))
		if m.state == CheckInStateScanning {
			content.WriteString("\n\n")
			content.WriteString(fmt.Sprintf("%s Checking...", m.spinner.View()))
		}

	case CheckInStateDecided, CheckInStateSubmitting:
		content.WriteString(m.renderDecision())
		if m.state == CheckInStateSubmitting {
			content.WriteString("\n\n")
			content.WriteString(fmt.Sprintf("%s Recording attendance...", m.spinner.View()))
		}

	case CheckInStateRecorded:
		content.WriteString(m.renderRecorded())

	case CheckInStateError:
		content.WriteString(common.FormatHelp("ctrl+r", "retry"))
	}

	if m.err != nil {
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

func (m CheckInModel) preparingStatus() string {
	switch {
	case m.fix == nil && !m.loaded:
		return "Getting your location and facilities..."
	case m.fix == nil:
		return "Getting your location..."
	default:
		return "Loading facilities..."
	}
}

func (m CheckInModel) renderStatus() string {
	var b strings.Builder

	b.WriteString(common.LabelStyle.Render("Position"))
	switch {
	case m.fix == nil:
		b.WriteString(common.MutedTextStyle.Render("-"))
	case m.fix.OK():
		b.WriteString(common.TextStyle.Render(m.fix.Point.String()))
	default:
		b.WriteString(common.WarningTextStyle.Render(m.messages.Error(m.fix.Err)))
	}
	b.WriteString("\n")

	b.WriteString(common.LabelStyle.Render("Facilities"))
	b.WriteString(common.TextStyle.Render(fmt.Sprintf("%d", len(m.facilities))))

	if m.fix != nil && m.fix.OK() && len(m.facilities) > 0 {
		b.WriteString("\n")
		b.WriteString(common.LabelStyle.Render("Nearby"))
		results := facility.Evaluate(m.fix.Point, facility.Active(m.facilities))
		if best, ok := facility.BestMatch(results); ok {
			b.WriteString(common.SuccessTextStyle.Render(fmt.Sprintf("%s (%.0f m)", best.Facility.Name, best.DistanceMeters)))
		} else {
			b.WriteString(common.MutedTextStyle.Render("no facility in range"))
		}
	}

	return b.String()
}

func (m CheckInModel) renderDecision() string {
	d := m.decision
	if d == nil {
		return ""
	}

	var b strings.Builder
	box := common.DeniedBoxStyle
	if d.Authorized() {
		box = common.AuthorizedBoxStyle
		b.WriteString(common.SuccessTextStyle.Bold(true).Render("✓ Check-in allowed"))
	} else {
		b.WriteString(common.ErrorTextStyle.Bold(true).Render("✗ Check-in denied"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.messages.Reason(d.Reason))

	if d.Facility != nil {
		b.WriteString("\n\n")
		b.WriteString(common.LabelStyle.Render("Facility"))
		b.WriteString(d.Facility.Name)
		if d.Facility.Address != "" {
			b.WriteString("\n")
			b.WriteString(common.LabelStyle.Render(""))
			b.WriteString(common.MutedTextStyle.Render(d.Facility.Address))
		}
		if d.DistanceMeters != nil {
			b.WriteString("\n")
			b.WriteString(common.LabelStyle.Render("Distance"))
			b.WriteString(m.messages.Distance(*d.DistanceMeters, d.Facility.AllowedRadius))
		}
	}

	var hint string
	if d.Authorized() {
		hint = common.FormatHelp("y", "confirm check-in") + "  " + common.FormatHelp("enter", "scan again")
	} else {
		hint = common.FormatHelp("enter", "scan again") + "  " + common.FormatHelp("ctrl+r", "new location")
	}

	return box.Render(b.String()) + "\n\n" + hint
}

func (m CheckInModel) renderRecorded() string {
	if m.record == nil {
		return ""
	}

	at := m.record.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}
	text := m.messages.Text("recorded."+string(m.record.Type), at.Local().Format("15:04"))

	var b strings.Builder
	b.WriteString(common.SuccessTextStyle.Bold(true).Render("✓ " + text))
	if m.decision != nil && m.decision.Facility != nil {
		b.WriteString("\n\n")
		b.WriteString(common.LabelStyle.Render("Facility"))
		b.WriteString(m.decision.Facility.Name)
	}
	b.WriteString("\n")
	b.WriteString(common.LabelStyle.Render("Record"))
	b.WriteString(fmt.Sprintf("#%d", m.record.ID))

	return common.AuthorizedBoxStyle.Render(b.String()) + "\n\n" + common.FormatHelp("enter", "done")
}

// State returns the current screen state
func (m CheckInModel) State() CheckInState {
	return m.state
}

// Attempt returns the number of the current attempt
func (m CheckInModel) Attempt() int {
	return m.attempt
}
