package models

import "slices"

// Role names as issued by the backend.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

// LoginResponse is returned by a successful password login.
type LoginResponse struct {
	OTPToken            string `json:"otpToken" validate:"required"`
	RequiredGenerateOTP bool   `json:"requiredGenerateOTP"`
	HaveMFA             bool   `json:"haveMFA"`
}

// OTPEnrollment carries the provisioning URI for an authenticator app.
type OTPEnrollment struct {
	OTPAuthURI string `json:"otpauthUri" validate:"required"`
}

// OTPVerifyRequest submits a time-based code for an OTP token.
type OTPVerifyRequest struct {
	OTPToken string `json:"otpToken"`
	Code     string `json:"code"`
}

// TokenPair is the authenticated session issued after OTP verification
// or a refresh.
type TokenPair struct {
	AccessToken  string   `json:"accessToken" validate:"required"`
	RefreshToken string   `json:"refreshToken" validate:"required"`
	Roles        []string `json:"roles"`
}

// HasRole reports whether the pair carries the given role.
func (t TokenPair) HasRole(role string) bool {
	return slices.Contains(t.Roles, role)
}
