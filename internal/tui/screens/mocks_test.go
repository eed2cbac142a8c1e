package screens

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/checkpointhr/attendcli/internal/journal"
	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/otp"
)

// runCmd executes cmd and flattens batches into the resulting messages.
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

// findMsg returns the first message of type T produced by cmd.
func findMsg[T any](cmd tea.Cmd) (T, bool) {
	for _, msg := range runCmd(cmd) {
		if m, ok := msg.(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

type mockAuth struct {
	state otp.State
	err   error
	got   []models.Credentials
}

func (m *mockAuth) Login(ctx context.Context, creds models.Credentials) (otp.State, error) {
	m.got = append(m.got, creds)
	if m.err != nil {
		return otp.StateIdle, m.err
	}
	return m.state, nil
}

type mockPairing struct {
	state     otp.State
	uri       string
	enrollErr error
	result    otp.Result
	verifyErr error
	codes     []string
	resets    int
	resetErr  error
}

func (m *mockPairing) State() otp.State {
	return m.state
}

func (m *mockPairing) Enroll(ctx context.Context) (otp.Enrollment, error) {
	if m.enrollErr != nil {
		return otp.Enrollment{}, m.enrollErr
	}
	m.state = otp.StateAwaitingScan
	return otp.Enrollment{URI: m.uri}, nil
}

func (m *mockPairing) Verify(ctx context.Context, code string) (otp.Result, error) {
	m.codes = append(m.codes, code)
	if m.verifyErr != nil {
		return otp.Result{}, m.verifyErr
	}
	m.state = otp.StateVerified
	return m.result, nil
}

func (m *mockPairing) Reset() error {
	m.resets++
	if m.resetErr != nil {
		return m.resetErr
	}
	m.state = otp.StateIdle
	return nil
}

type mockLister struct {
	mu         sync.Mutex
	facilities []models.Facility
	err        error
	calls      int
}

func (m *mockLister) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.facilities, m.err
}

type mockRecorder struct {
	record *models.AttendanceRecord
	err    error
	calls  []models.AttendanceRequest
}

func (m *mockRecorder) RecordAttendance(ctx context.Context, req models.AttendanceRequest) (*models.AttendanceRecord, error) {
	m.calls = append(m.calls, req)
	return m.record, m.err
}

type mockHistory struct {
	entries []journal.Entry
	err     error
}

func (m *mockHistory) Recent(ctx context.Context, limit int) ([]journal.Entry, error) {
	return m.entries, m.err
}

type mockEnder struct {
	err   error
	calls int
}

func (m *mockEnder) Logout() error {
	m.calls++
	return m.err
}

func officeFacility() models.Facility {
	return models.Facility{
		ID:            1,
		Name:          "Hanoi Office",
		Address:       "1 Trang Tien",
		Latitude:      21.0285,
		Longitude:     105.8542,
		AllowedRadius: 100,
		Active:        true,
	}
}
