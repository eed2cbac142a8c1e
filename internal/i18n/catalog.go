package i18n

import "golang.org/x/text/language"

// Message keys.
const (
	KeyGeneric = "generic"

	KeyWithinRange         = "WITHIN_RANGE"
	KeyOutOfRange          = "OUT_OF_RANGE"
	KeyNoFacilities        = "NO_FACILITIES"
	KeyLocationUnavailable = "LOCATION_UNAVAILABLE"
	KeyFacilityNotFound    = "FACILITY_NOT_FOUND"
	KeyMalformedPayload    = "MALFORMED_PAYLOAD"

	KeyLocationDenied  = "location.denied"
	KeyLocationTimeout = "location.timeout"

	KeyNetwork        = "network"
	KeyUnauthorized   = "unauthorized"
	KeyForbidden      = "forbidden"
	KeyServer         = "server"
	KeyRateLimited    = "rate_limited"
	KeyBadResponse    = "bad_response"
	KeyCodeFormat     = "otp.code_format"
	KeyInvalidCode    = "otp.invalid_code"
	KeyTokenExpired   = "otp.token_expired"
	KeyNotAuthorized  = "checkin.not_authorized"
	KeyInFlight       = "checkin.in_flight"
	KeyNoQRCode       = "qr.no_code"
	KeyUnreadable     = "qr.unreadable"
	KeyNoSession      = "session.none"
	KeyDistance       = "distance"
	KeyCheckedIn      = "recorded.CHECK_IN"
	KeyCheckedOut     = "recorded.CHECK_OUT"

	// Backend error codes. ERROR_011 is the only code the backend is known
	// to send; any other code falls back to the text for its HTTP status.
	KeyBackendExpired = "ERROR_011"
)

var entries = map[language.Tag]map[string]string{
	language.English: {
		KeyGeneric: "Something went wrong. Please try again.",

		KeyWithinRange:         "You are within the allowed range.",
		KeyOutOfRange:          "You are too far from this facility.",
		KeyNoFacilities:        "No facilities are available for your account.",
		KeyLocationUnavailable: "Your location could not be determined.",
		KeyFacilityNotFound:    "This QR code does not belong to any of your facilities.",
		KeyMalformedPayload:    "This is not a facility QR code.",

		KeyLocationDenied:  "Location access was denied.",
		KeyLocationTimeout: "Getting your location took too long.",

		KeyNetwork:        "Cannot reach the server. Check your connection.",
		KeyUnauthorized:   "Your session has ended. Please log in again.",
		KeyForbidden:      "You do not have access to this.",
		KeyServer:         "The server is having trouble. Please try again later.",
		KeyRateLimited:    "Too many requests. Please wait a moment.",
		KeyBadResponse:    "The server sent an unexpected response.",
		KeyCodeFormat:     "Enter the 6-digit code from your authenticator app.",
		KeyInvalidCode:    "That code is not valid. Please try again.",
		KeyTokenExpired:   "Your login has expired. Please log in again.",
		KeyNotAuthorized:  "Check-in is not allowed from here.",
		KeyInFlight:       "A check-in is already being sent.",
		KeyNoQRCode:       "No QR code was found in that image.",
		KeyUnreadable:     "That file could not be read as an image.",
		KeyNoSession:      "You are not logged in.",
		KeyDistance:       "%.0f m away (allowed %.0f m)",
		KeyCheckedIn:      "Checked in at %s.",
		KeyCheckedOut:     "Checked out at %s.",
		KeyBackendExpired: "Your login has expired. Please log in again.",
	},
	language.Vietnamese: {
		KeyGeneric: "Đã xảy ra lỗi. Vui lòng thử lại.",

		KeyWithinRange:         "Bạn đang ở trong phạm vi cho phép.",
		KeyOutOfRange:          "Bạn ở quá xa cơ sở này.",
		KeyNoFacilities:        "Tài khoản của bạn chưa có cơ sở nào.",
		KeyLocationUnavailable: "Không xác định được vị trí của bạn.",
		KeyFacilityNotFound:    "Mã QR này không thuộc cơ sở nào của bạn.",
		KeyMalformedPayload:    "Đây không phải mã QR của cơ sở.",

		KeyLocationDenied:  "Quyền truy cập vị trí bị từ chối.",
		KeyLocationTimeout: "Lấy vị trí quá lâu.",

		KeyNetwork:        "Không kết nối được máy chủ. Hãy kiểm tra mạng.",
		KeyUnauthorized:   "Phiên đăng nhập đã kết thúc. Vui lòng đăng nhập lại.",
		KeyForbidden:      "Bạn không có quyền truy cập.",
		KeyServer:         "Máy chủ đang gặp sự cố. Vui lòng thử lại sau.",
		KeyRateLimited:    "Quá nhiều yêu cầu. Vui lòng đợi một lát.",
		KeyBadResponse:    "Máy chủ trả về dữ liệu không hợp lệ.",
		KeyCodeFormat:     "Nhập mã 6 chữ số từ ứng dụng xác thực.",
		KeyInvalidCode:    "Mã không hợp lệ. Vui lòng thử lại.",
		KeyTokenExpired:   "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại.",
		KeyNotAuthorized:  "Không được phép chấm công tại đây.",
		KeyInFlight:       "Đang gửi chấm công.",
		KeyNoQRCode:       "Không tìm thấy mã QR trong ảnh.",
		KeyUnreadable:     "Không đọc được tệp ảnh.",
		KeyNoSession:      "Bạn chưa đăng nhập.",
		KeyDistance:       "Cách %.0f m (cho phép %.0f m)",
		KeyCheckedIn:      "Đã chấm công vào lúc %s.",
		KeyCheckedOut:     "Đã chấm công ra lúc %s.",
		KeyBackendExpired: "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại.",
	},
}
