package api

import (
	"context"
	"fmt"

	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/validate"
)

// FacilitiesPath returns the facility listing endpoint for the most
// privileged of roles.
func FacilitiesPath(roles []string) string {
	pair := models.TokenPair{Roles: roles}
	switch {
	case pair.HasRole(models.RoleAdmin):
		return "/admin/facilities"
	case pair.HasRole(models.RoleManager):
		return "/manager/facilities"
	default:
		return "/facilities"
	}
}

// ListFacilities returns the facilities visible to the stored session.
// Every facility is validated; one invalid entry rejects the response.
func (c *Client) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	a, pair, err := c.sessionAuth()
	if err != nil {
		return nil, err
	}

	data, err := c.get(ctx, FacilitiesPath(pair.Roles), a)
	if err != nil {
		return nil, err
	}

	var facilities []models.Facility
	if err := decode(data, &facilities); err != nil {
		return nil, err
	}

	for i, f := range facilities {
		if err := validate.Struct(f); err != nil {
			return nil, fmt.Errorf("%w: facility %d (index %d): %w", ErrMalformedResponse, f.ID, i, err)
		}
	}

	return facilities, nil
}
