// Package journal keeps a local SQLite log of check-in attempts.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrEntryNotFound is returned when completing an unknown attempt.
var ErrEntryNotFound = errors.New("journal entry not found")

// Entry is one check-in attempt as seen by this device.
type Entry struct {
	ID             string
	AttemptedAt    time.Time
	FacilityID     int64
	FacilityName   string
	Verdict        string
	Reason         string
	DistanceMeters *float64
	Submitted      bool
	RecordID       *int64
	RecordType     string
	Error          string
}

// Journal wraps the SQLite database connection and schema lifecycle.
type Journal struct {
	db *sql.DB
}

// Open initializes the database connection, creating directories as needed.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Journal{db: db}, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// InitSchema ensures the attempts table exists.
func (j *Journal) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checkin_attempts (
			id TEXT PRIMARY KEY,
			attempted_at TEXT NOT NULL,
			facility_id INTEGER,
			facility_name TEXT,
			verdict TEXT NOT NULL,
			reason TEXT NOT NULL,
			distance_meters REAL,
			submitted INTEGER NOT NULL DEFAULT 0,
			record_id INTEGER,
			record_type TEXT,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_checkin_attempts_time ON checkin_attempts(attempted_at);`,
	}

	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// Append stores a new attempt. An empty ID is replaced with a fresh UUID
// and a zero AttemptedAt with the current time.
func (j *Journal) Append(ctx context.Context, e *Entry) error {
	if j.db == nil {
		return fmt.Errorf("journal not initialized")
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.AttemptedAt.IsZero() {
		e.AttemptedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(
		ctx,
		`INSERT INTO checkin_attempts (id, attempted_at, facility_id, facility_name, verdict, reason, distance_meters)
		 VALUES (?, ?, ?, ?, ?, ?, ?);`,
		e.ID,
		e.AttemptedAt.UTC().Format(time.RFC3339Nano),
		nullInt(e.FacilityID),
		e.FacilityName,
		e.Verdict,
		e.Reason,
		e.DistanceMeters,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	return nil
}

// Complete records the outcome of submitting an attempt.
func (j *Journal) Complete(ctx context.Context, id string, recordID int64, recordType string, submitErr error) error {
	if j.db == nil {
		return fmt.Errorf("journal not initialized")
	}

	var (
		submitted = submitErr == nil
		errText   sql.NullString
		record    sql.NullInt64
	)
	if submitErr != nil {
		errText = sql.NullString{String: submitErr.Error(), Valid: true}
	} else {
		record = sql.NullInt64{Int64: recordID, Valid: true}
	}

	res, err := j.db.ExecContext(
		ctx,
		`UPDATE checkin_attempts SET submitted = ?, record_id = ?, record_type = ?, error = ? WHERE id = ?;`,
		submitted,
		record,
		recordType,
		errText,
		id,
	)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	return nil
}

// Recent returns the latest attempts, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, attempted_at, facility_id, facility_name, verdict, reason, distance_meters,
		        submitted, record_id, record_type, error
		 FROM checkin_attempts ORDER BY attempted_at DESC LIMIT ?;`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)

	for rows.Next() {
		var (
			e            Entry
			attemptedAt  string
			facilityID   sql.NullInt64
			facilityName sql.NullString
			distance     sql.NullFloat64
			recordID     sql.NullInt64
			recordType   sql.NullString
			errText      sql.NullString
		)

		if err := rows.Scan(&e.ID, &attemptedAt, &facilityID, &facilityName, &e.Verdict, &e.Reason,
			&distance, &e.Submitted, &recordID, &recordType, &errText); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}

		e.AttemptedAt, _ = time.Parse(time.RFC3339Nano, attemptedAt)
		e.FacilityID = facilityID.Int64
		e.FacilityName = facilityName.String
		if distance.Valid {
			d := distance.Float64
			e.DistanceMeters = &d
		}
		if recordID.Valid {
			id := recordID.Int64
			e.RecordID = &id
		}
		e.RecordType = recordType.String
		e.Error = errText.String

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return entries, nil
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
