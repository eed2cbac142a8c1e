package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_Locate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"latitude": 21.0285, "longitude": 105.8542, "accuracy": 12}`))
		}))
		defer server.Close()

		p := NewHTTPProvider(server.URL, nil)
		point, err := p.Locate(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 21.0285, point.Latitude)
		assert.Equal(t, 105.8542, point.Longitude)
	})

	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{"forbidden", http.StatusForbidden, `{}`, ErrPermissionDenied},
		{"unauthorized", http.StatusUnauthorized, `{}`, ErrPermissionDenied},
		{"server error", http.StatusServiceUnavailable, `{}`, ErrUnavailable},
		{"not json", http.StatusOK, `gps warming up`, ErrUnavailable},
		{"missing longitude", http.StatusOK, `{"latitude": 1}`, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewHTTPProvider(server.URL, nil)
			_, err := p.Locate(context.Background())

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		p := NewHTTPProvider(url, nil)
		_, err := p.Locate(context.Background())

		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
