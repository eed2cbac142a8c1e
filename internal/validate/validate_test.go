package validate

import (
	"math"
	"testing"

	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStruct_GeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		point   models.GeoPoint
		wantErr bool
	}{
		{"hanoi", models.NewGeoPoint(21.0285, 105.8542), false},
		{"poles and antimeridian", models.NewGeoPoint(-90, 180), false},
		{"latitude too large", models.NewGeoPoint(90.0001, 0), true},
		{"longitude too small", models.NewGeoPoint(0, -180.5), true},
		{"nan latitude", models.NewGeoPoint(math.NaN(), 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.point)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStruct_Facility(t *testing.T) {
	valid := models.Facility{
		ID:            1,
		Name:          "HQ",
		Latitude:      21.0285,
		Longitude:     105.8542,
		AllowedRadius: 100,
	}
	assert.NoError(t, Struct(valid))

	noRadius := valid
	noRadius.AllowedRadius = 0
	assert.Error(t, Struct(noRadius))

	noID := valid
	noID.ID = 0
	assert.Error(t, Struct(noID))

	noName := valid
	noName.Name = ""
	assert.Error(t, Struct(noName))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("123456", "len=6,numeric"))
	assert.Error(t, Var("12a456", "len=6,numeric"))
}
