package sketch

import (
	"context"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/geom"
)

// Default parameter values.
const (
	DefaultMaxSegmentLength = 5.0
	DefaultScale            = 3.0
	DefaultWavelength       = 16.0
	DefaultRandomness       = 2.0
)

// Params controls a sketch pass. All lengths are in document user units.
type Params struct {
	// MaxSegmentLength is the longest segment left after subdivision.
	MaxSegmentLength float64 `json:"max_segment_length" toml:"max_segment_length"`

	// Scale is the displacement amplitude. Zero disables displacement.
	Scale float64 `json:"scale" toml:"scale"`

	// Wavelength is the average distance between wobble peaks.
	Wavelength float64 `json:"wavelength" toml:"wavelength"`

	// Randomness widens the spread of phase steps. 1 gives a perfectly
	// periodic wobble.
	Randomness float64 `json:"randomness" toml:"randomness"`
}

// DefaultParams returns the parameters used when none are given.
func DefaultParams() Params {
	return Params{
		MaxSegmentLength: DefaultMaxSegmentLength,
		Scale:            DefaultScale,
		Wavelength:       DefaultWavelength,
		Randomness:       DefaultRandomness,
	}
}

// Validate checks that every parameter is in its domain.
func (p Params) Validate() error {
	if err := errors.ValidatePositive("max segment length", p.MaxSegmentLength); err != nil {
		return err
	}
	if err := errors.ValidateFinite("scale", p.Scale); err != nil {
		return err
	}
	if err := errors.ValidatePositive("wavelength", p.Wavelength); err != nil {
		return err
	}
	return errors.ValidatePositive("randomness", p.Randomness)
}

// Sketch subdivides path and then perturbs the result.
func Sketch(path geom.Path, params Params, rng Source) (geom.Path, error) {
	return SketchContext(context.Background(), path, params, rng)
}

// SketchContext is Sketch with cancellation during subdivision.
func SketchContext(ctx context.Context, path geom.Path, params Params, rng Source) (geom.Path, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sub, err := SubdivideContext(ctx, path, params.MaxSegmentLength)
	if err != nil {
		return nil, err
	}
	return Perturb(sub, params.Scale, params.Wavelength, params.Randomness, rng)
}
