// Package validate wraps go-playground/validator with the coordinate and
// geofence tags used by attendance payloads.
package validate

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = New()
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("lat", validateLat)
	_ = v.RegisterValidation("lng", validateLng)
	_ = v.RegisterValidation("radius", validateRadius)
	return v
}

// Struct validates s against its `validate` tags.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Var validates a single value against a tag expression.
func Var(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func validateLat(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLng(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180 && lng <= 180
}

// radius must be strictly positive.
func validateRadius(fl validator.FieldLevel) bool {
	return fl.Field().Float() > 0
}
