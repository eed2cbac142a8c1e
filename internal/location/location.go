// Package location acquires a single position fix for a check-in attempt.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/checkpointhr/attendcli/internal/models"
	"github.com/checkpointhr/attendcli/internal/validate"
)

const (
	// DefaultTimeout bounds a single acquisition.
	DefaultTimeout = 8 * time.Second
	// MinTimeout and MaxTimeout clamp configured timeouts.
	MinTimeout = 1 * time.Second
	MaxTimeout = 30 * time.Second
)

var (
	// ErrPermissionDenied indicates the user or platform refused access to the position
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnavailable indicates no position source could produce a fix
	ErrUnavailable = errors.New("location unavailable")

	// ErrTimeout indicates no fix arrived within the allowed wait
	ErrTimeout = errors.New("location timeout")
)

// Provider produces one position reading per call.
type Provider interface {
	Locate(ctx context.Context) (models.GeoPoint, error)
}

// Fix is the outcome of one acquisition: either a point or an error.
type Fix struct {
	Point      models.GeoPoint
	Err        error
	AcquiredAt time.Time
}

// OK reports whether the fix carries a usable point.
func (f Fix) OK() bool {
	return f.Err == nil
}

// FixAt returns a successful fix for p, mainly for callers that already
// hold coordinates.
func FixAt(p models.GeoPoint) Fix {
	return Fix{Point: p, AcquiredAt: time.Now().UTC()}
}

// Failed returns a fix carrying err.
func Failed(err error) Fix {
	return Fix{Err: err, AcquiredAt: time.Now().UTC()}
}

// ClampTimeout keeps a configured timeout within [MinTimeout, MaxTimeout];
// zero selects DefaultTimeout.
func ClampTimeout(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultTimeout
	case d < MinTimeout:
		return MinTimeout
	case d > MaxTimeout:
		return MaxTimeout
	}
	return d
}

// Acquire asks p for a single reading and waits at most timeout for it.
// A provider that ignores its context is abandoned when the wait expires.
// Cancelling ctx returns a fix carrying ctx.Err().
func Acquire(ctx context.Context, p Provider, timeout time.Duration) Fix {
	return acquire(ctx, p, ClampTimeout(timeout))
}

func acquire(ctx context.Context, p Provider, timeout time.Duration) Fix {
	if p == nil {
		return Failed(ErrUnavailable)
	}

	locateCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reading struct {
		point models.GeoPoint
		err   error
	}
	done := make(chan reading, 1)

	go func() {
		point, err := p.Locate(locateCtx)
		done <- reading{point: point, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return Failed(classify(ctx, r.err))
		}
		if err := validate.Struct(r.point); err != nil {
			return Failed(fmt.Errorf("%w: invalid coordinates %s", ErrUnavailable, r.point))
		}
		return FixAt(r.point)

	case <-locateCtx.Done():
		return Failed(classify(ctx, locateCtx.Err()))
	}
}

// classify maps provider and context errors onto the tagged errors.
func classify(parent context.Context, err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return err
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
