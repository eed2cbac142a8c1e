package facility

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/checkpointhr/attendcli/internal/models"
)

var (
	// ErrMalformedPayload means the scanned text is not a facility QR payload.
	ErrMalformedPayload = errors.New("malformed facility payload")

	// ErrFacilityNotFound means the payload names a facility that is not
	// in the known set.
	ErrFacilityNotFound = errors.New("facility not found")
)

// Payload is the JSON document encoded in a facility QR code. Only ID is
// used for matching; the rest is display data and is not trusted.
type Payload struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name,omitempty"`
	Address       string  `json:"address,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	AllowDistance float64 `json:"allowDistance,omitempty"`
}

// DecodePayload parses raw scanned text into a Payload.
func DecodePayload(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '{' {
		return Payload{}, ErrMalformedPayload
	}

	// id must be a bare JSON integer literal: strings, null and
	// exponent or fraction forms such as 2.0 are rejected.
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&head); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if dec.More() {
		return Payload{}, fmt.Errorf("%w: trailing data", ErrMalformedPayload)
	}
	if len(head.ID) == 0 {
		return Payload{}, fmt.Errorf("%w: missing id", ErrMalformedPayload)
	}
	id, err := parseID(head.ID)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: invalid id %s", ErrMalformedPayload, head.ID)
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// display fields with the wrong type do not invalidate the id
		p = Payload{}
	}
	p.ID = id

	return p, nil
}

func parseID(raw json.RawMessage) (int64, error) {
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, fmt.Errorf("id is not a number")
	}
	id, err := json.Number(raw).Int64()
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

// Match resolves raw scanned text to one of the known facilities by exact
// id equality.
func Match(raw string, known []models.Facility) (models.Facility, error) {
	p, err := DecodePayload(raw)
	if err != nil {
		return models.Facility{}, err
	}

	byID := lo.KeyBy(known, func(f models.Facility) int64 {
		return f.ID
	})
	f, ok := byID[p.ID]
	if !ok {
		return models.Facility{}, fmt.Errorf("%w: id %d", ErrFacilityNotFound, p.ID)
	}

	return f, nil
}

// EncodePayload returns the QR payload text for a facility.
func EncodePayload(f models.Facility) (string, error) {
	data, err := json.Marshal(Payload{
		ID:            f.ID,
		Name:          f.Name,
		Address:       f.Address,
		Latitude:      f.Latitude,
		Longitude:     f.Longitude,
		AllowDistance: f.AllowedRadius,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode facility payload: %w", err)
	}
	return string(data), nil
}
