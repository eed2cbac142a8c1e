package i18n

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/checkin"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/session"
)

func TestNew_Matching(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"vi", language.Vietnamese},
		{"vi-VN", language.Vietnamese},
		{"en_US", language.English},
		{"fr", language.English},
		{"", language.English},
		{"not a locale!", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.locale).Language())
		})
	}
}

func TestCatalog_Complete(t *testing.T) {
	for key := range entries[language.English] {
		_, ok := entries[language.Vietnamese][key]
		assert.True(t, ok, "missing vi translation for %s", key)
	}
}

func TestMessages_Reason(t *testing.T) {
	en := New("en")
	vi := New("vi")

	reasons := []checkin.Reason{
		checkin.ReasonWithinRange,
		checkin.ReasonOutOfRange,
		checkin.ReasonNoFacilities,
		checkin.ReasonLocationUnavailable,
		checkin.ReasonFacilityNotFound,
		checkin.ReasonMalformedPayload,
	}
	for _, r := range reasons {
		assert.NotEqual(t, string(r), en.Reason(r))
		assert.NotEqual(t, en.Reason(r), vi.Reason(r), "reason %s", r)
	}

	assert.Equal(t, "You are too far from this facility.", en.Reason(checkin.ReasonOutOfRange))
}

func TestMessages_UnknownKeyIsGeneric(t *testing.T) {
	m := New("en")

	assert.Equal(t, entries[language.English][KeyGeneric], m.Text("ERROR_999"))
	assert.Equal(t, entries[language.English][KeyGeneric], m.Reason(checkin.Reason("SOMETHING_NEW")))
}

func TestMessages_Distance(t *testing.T) {
	assert.Equal(t, "222 m away (allowed 100 m)", New("en").Distance(222.39, 100))
}

func TestMessages_Error(t *testing.T) {
	m := New("en")
	text := func(key string) string { return entries[language.English][key] }

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"backend code", api.NewAPIError(400, "", api.CodeOTPExpired), text(KeyBackendExpired)},
		{"unknown backend code uses status", api.NewAPIError(503, "", "ERROR_500"), text(KeyServer)},
		{"unknown backend code on 403 uses status", api.NewAPIError(403, "", "ERROR_042"), text(KeyForbidden)},
		{"unknown backend code on 400 is generic", api.NewAPIError(400, "", "ERROR_042"), text(KeyGeneric)},
		{"location denied", fmt.Errorf("acquire: %w", location.ErrPermissionDenied), text(KeyLocationDenied)},
		{"location timeout", location.ErrTimeout, text(KeyLocationTimeout)},
		{"code format", otp.ErrInvalidCodeFormat, text(KeyCodeFormat)},
		{"invalid code", fmt.Errorf("%w: %w", otp.ErrInvalidCode, api.NewAPIError(400, "", "ERROR_010")), text(KeyInvalidCode)},
		{"token expired", otp.ErrTokenExpired, text(KeyTokenExpired)},
		{"not logged in", fmt.Errorf("%w: %w", api.ErrUnauthorized, session.ErrNoSession), text(KeyNoSession)},
		{"rejected session", api.NewAPIError(401, ""), text(KeyUnauthorized)},
		{"transport", fmt.Errorf("%w: dial tcp", api.ErrTransport), text(KeyNetwork)},
		{"in flight", checkin.ErrSubmissionInFlight, text(KeyInFlight)},
		{"unknown", errors.New("boom"), text(KeyGeneric)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Error(tt.err))
		})
	}
}

func TestMessages_Vietnamese(t *testing.T) {
	m := New("vi")

	assert.Equal(t, "Bạn ở quá xa cơ sở này.", m.Reason(checkin.ReasonOutOfRange))
	assert.Equal(t, "Mã không hợp lệ. Vui lòng thử lại.", m.Error(otp.ErrInvalidCode))
}
