// Package i18n turns reason codes and errors into user-facing text.
package i18n

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/checkpointhr/attendcli/internal/api"
	"github.com/checkpointhr/attendcli/internal/checkin"
	"github.com/checkpointhr/attendcli/internal/facility"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/otp"
	"github.com/checkpointhr/attendcli/internal/qr"
	"github.com/checkpointhr/attendcli/internal/session"
)

var supported = []language.Tag{language.English, language.Vietnamese}

var (
	matcher = language.NewMatcher(supported)
	builder = newBuilder()
)

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range entries {
		for key, text := range msgs {
			_ = b.SetString(tag, key, text)
		}
	}
	return b
}

// Messages renders localized text for one language.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns Messages for the closest supported match of locale, such as
// "vi", "vi-VN" or "en_US". Unknown locales fall back to English.
func New(locale string) *Messages {
	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			tag = supported[idx]
		}
	}

	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}
}

// Language returns the selected language tag.
func (m *Messages) Language() language.Tag {
	return m.tag
}

// Text returns the message for key. Unknown keys render the generic
// message, never the key itself.
func (m *Messages) Text(key string, args ...any) string {
	if _, ok := entries[language.English][key]; !ok {
		key = KeyGeneric
	}
	return m.printer.Sprintf(key, args...)
}

// Reason returns the message for a check-in decision reason.
func (m *Messages) Reason(r checkin.Reason) string {
	return m.Text(string(r))
}

// Distance formats a distance against an allowed radius.
func (m *Messages) Distance(meters, allowed float64) string {
	return m.printer.Sprintf(KeyDistance, meters, allowed)
}

// Error returns the user-facing message for err. Backend error codes take
// precedence over HTTP status classes.
func (m *Messages) Error(err error) string {
	if err == nil {
		return ""
	}
	return m.Text(errorKey(err))
}

func errorKey(err error) string {
	if code := api.ErrorCode(err); code != "" {
		if _, ok := entries[language.English][code]; ok {
			return code
		}
	}

	switch {
	case errors.Is(err, location.ErrPermissionDenied):
		return KeyLocationDenied
	case errors.Is(err, location.ErrTimeout):
		return KeyLocationTimeout
	case errors.Is(err, location.ErrUnavailable):
		return KeyLocationUnavailable
	case errors.Is(err, facility.ErrMalformedPayload):
		return KeyMalformedPayload
	case errors.Is(err, facility.ErrFacilityNotFound):
		return KeyFacilityNotFound
	case errors.Is(err, otp.ErrInvalidCodeFormat):
		return KeyCodeFormat
	case errors.Is(err, otp.ErrTokenExpired), errors.Is(err, api.ErrOTPExpired):
		return KeyTokenExpired
	case errors.Is(err, otp.ErrInvalidCode):
		return KeyInvalidCode
	case errors.Is(err, checkin.ErrNotAuthorized):
		return KeyNotAuthorized
	case errors.Is(err, checkin.ErrSubmissionInFlight):
		return KeyInFlight
	case errors.Is(err, qr.ErrNoCode):
		return KeyNoQRCode
	case errors.Is(err, qr.ErrUnreadableImage):
		return KeyUnreadable
	case errors.Is(err, session.ErrNoSession):
		return KeyNoSession
	case errors.Is(err, api.ErrTransport):
		return KeyNetwork
	case errors.Is(err, api.ErrUnauthorized):
		return KeyUnauthorized
	case errors.Is(err, api.ErrForbidden):
		return KeyForbidden
	case errors.Is(err, api.ErrRateLimited):
		return KeyRateLimited
	case errors.Is(err, api.ErrServerError):
		return KeyServer
	case errors.Is(err, api.ErrMalformedResponse):
		return KeyBadResponse
	}
	return KeyGeneric
}
