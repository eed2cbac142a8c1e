package checkin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/checkpointhr/attendcli/internal/journal"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
)

var (
	// ErrNotAuthorized is returned when submitting a decision that is not AUTHORIZE.
	ErrNotAuthorized = errors.New("check-in not authorized")

	// ErrSubmissionInFlight is returned while another submission is pending.
	ErrSubmissionInFlight = errors.New("check-in submission already in progress")
)

// Recorder sends an attendance record to the backend.
type Recorder interface {
	RecordAttendance(ctx context.Context, req models.AttendanceRequest) (*models.AttendanceRecord, error)
}

// Journal stores check-in attempts locally.
type Journal interface {
	Append(ctx context.Context, e *journal.Entry) error
	Complete(ctx context.Context, id string, recordID int64, recordType string, submitErr error) error
}

// Service runs the gate, journals each decision and submits authorized
// check-ins one at a time.
type Service struct {
	gate     *Gate
	recorder Recorder
	journal  Journal
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithJournal records every decision and submission outcome in j.
func WithJournal(j Journal) ServiceOption {
	return func(s *Service) {
		s.journal = j
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service submitting through recorder.
func NewService(recorder Recorder, opts ...ServiceOption) *Service {
	s := &Service{
		gate:     NewGate(),
		recorder: recorder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide decides an already identified facility and journals the decision.
func (s *Service) Decide(ctx context.Context, fix location.Fix, scanned models.Facility, facilities []models.Facility) Decision {
	return s.journalDecision(ctx, s.gate.Decide(fix, scanned, facilities))
}

// DecideScan decides a scanned payload and journals the decision.
// Journal failures are logged and do not change the decision.
func (s *Service) DecideScan(ctx context.Context, fix location.Fix, raw string, facilities []models.Facility) Decision {
	return s.journalDecision(ctx, s.gate.DecideScan(fix, raw, facilities))
}

func (s *Service) journalDecision(ctx context.Context, d Decision) Decision {
	fields := []zap.Field{
		zap.String("verdict", string(d.Verdict)),
		zap.String("reason", string(d.Reason)),
	}
	if d.Facility != nil {
		fields = append(fields, zap.Int64("facility_id", d.Facility.ID))
	}
	if d.DistanceMeters != nil {
		fields = append(fields, zap.Float64("distance_m", *d.DistanceMeters))
	}
	if d.Cause != nil {
		fields = append(fields, zap.Error(d.Cause))
	}
	s.logger.Info("check-in decided", fields...)

	if s.journal == nil {
		return d
	}

	entry := &journal.Entry{
		Verdict:        string(d.Verdict),
		Reason:         string(d.Reason),
		DistanceMeters: d.DistanceMeters,
	}
	if d.Facility != nil {
		entry.FacilityID = d.Facility.ID
		entry.FacilityName = d.Facility.Name
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to journal decision", zap.Error(err))
		return d
	}
	d.AttemptID = entry.ID

	return d
}

// Submit records attendance for an authorized decision.
func (s *Service) Submit(ctx context.Context, d Decision) (*models.AttendanceRecord, error) {
	if !d.Authorized() || d.Facility == nil || d.Position == nil {
		return nil, ErrNotAuthorized
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	record, err := s.recorder.RecordAttendance(ctx, models.AttendanceRequest{
		Latitude:   d.Position.Latitude,
		Longitude:  d.Position.Longitude,
		FacilityID: d.Facility.ID,
	})
	if err == nil && record == nil {
		err = errors.New("empty attendance response")
	}

	s.complete(ctx, d.AttemptID, record, err)

	if err != nil {
		s.logger.Warn("check-in submission failed",
			zap.Int64("facility_id", d.Facility.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	s.logger.Info("check-in recorded",
		zap.Int64("facility_id", d.Facility.ID),
		zap.Int64("record_id", record.ID),
		zap.String("type", string(record.Type)),
	)

	return record, nil
}

func (s *Service) complete(ctx context.Context, attemptID string, record *models.AttendanceRecord, submitErr error) {
	if s.journal == nil || attemptID == "" {
		return
	}

	var (
		recordID   int64
		recordType string
	)
	if record != nil {
		recordID = record.ID
		recordType = string(record.Type)
	}

	// the submission outcome is journaled even if ctx was cancelled mid-request
	if err := s.journal.Complete(context.WithoutCancel(ctx), attemptID, recordID, recordType, submitErr); err != nil {
		s.logger.Warn("failed to journal submission", zap.String("attempt_id", attemptID), zap.Error(err))
	}
}
