package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/checkpointhr/attendcli/internal/models"
)

// FixedProvider returns a configured position. A nil point means no
// position is configured.
type FixedProvider struct {
	Point *models.GeoPoint
}

// NewFixedProvider creates a provider that always reports p.
func NewFixedProvider(p models.GeoPoint) *FixedProvider {
	return &FixedProvider{Point: &p}
}

// Locate implements Provider.
func (f *FixedProvider) Locate(ctx context.Context) (models.GeoPoint, error) {
	if f.Point == nil {
		return models.GeoPoint{}, ErrUnavailable
	}
	return *f.Point, nil
}

// HTTPProvider reads a position from a JSON endpoint such as a device
// gateway or a phone companion app.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
}

// NewHTTPProvider creates a provider reading from url.
func NewHTTPProvider(url string, httpClient *http.Client) *HTTPProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPProvider{url: url, httpClient: httpClient}
}

// Locate implements Provider.
func (h *HTTPProvider) Locate(ctx context.Context) (models.GeoPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.GeoPoint{}, ErrTimeout
		}
		return models.GeoPoint{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.GeoPoint{}, ErrPermissionDenied
	case resp.StatusCode >= 400:
		return models.GeoPoint{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var reading struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(body, &reading); err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if reading.Latitude == nil || reading.Longitude == nil {
		return models.GeoPoint{}, fmt.Errorf("%w: reading without coordinates", ErrUnavailable)
	}

	return models.NewGeoPoint(*reading.Latitude, *reading.Longitude), nil
}

// MockProvider is a provider that can be used for testing without a real
// position source
type MockProvider struct {
	Point models.GeoPoint
	Error error
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

// NewMockProvider creates a mock provider reporting p.
func NewMockProvider(p models.GeoPoint) *MockProvider {
	return &MockProvider{Point: p}
}

// SetError sets an error that will be returned by the mock provider
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Error = err
}

// Calls returns how many times Locate ran.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Locate returns the pre-configured point or error after Delay.
func (m *MockProvider) Locate(ctx context.Context) (models.GeoPoint, error) {
	m.mu.Lock()
	m.calls++
	point, err, delay := m.Point, m.Error, m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return models.GeoPoint{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return models.GeoPoint{}, err
	}
	return point, nil
}
