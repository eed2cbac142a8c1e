package api

import (
	"context"
	"fmt"

	"github.com/checkpointhr/attendcli/internal/models"
)

// RecordAttendance books a check-in or check-out at a facility. The backend
// decides which of the two it is.
func (c *Client) RecordAttendance(ctx context.Context, req models.AttendanceRequest) (*models.AttendanceRecord, error) {
	a, _, err := c.sessionAuth()
	if err != nil {
		return nil, err
	}

	data, err := c.post(ctx, "/attendance/record", req, a)
	if err != nil {
		return nil, err
	}

	var record models.AttendanceRecord
	if err := decode(data, &record); err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, fmt.Errorf("%w: missing record id", ErrMalformedResponse)
	}

	return &record, nil
}
