package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkpointhr/attendcli/internal/models"
)

func TestClient_RecordAttendance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/attendance/record", r.URL.Path)
		assert.Equal(t, "Bearer test-access", r.Header.Get("Authorization"))

		var req models.AttendanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.AttendanceRequest{Latitude: 21.029, Longitude: 105.8542, FacilityID: 1}, req)

		w.Write([]byte(`{"id": 901, "facilityId": 1, "type": "CHECK_IN", "recordedAt": "2026-03-01T08:00:00Z"}`))
	}))
	defer server.Close()

	client := NewClient(loggedInStore(t, models.RoleUser), WithBaseURL(server.URL))
	record, err := client.RecordAttendance(context.Background(), models.AttendanceRequest{
		Latitude:   21.029,
		Longitude:  105.8542,
		FacilityID: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(901), record.ID)
	assert.Equal(t, models.AttendanceCheckIn, record.Type)
	assert.True(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC).Equal(record.RecordedAt))
}

func TestClient_RecordAttendance_MissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"facilityId": 1}`))
	}))
	defer server.Close()

	client := NewClient(loggedInStore(t, models.RoleUser), WithBaseURL(server.URL))
	_, err := client.RecordAttendance(context.Background(), models.AttendanceRequest{FacilityID: 1})

	assert.ErrorIs(t, err, ErrMalformedResponse)
}
