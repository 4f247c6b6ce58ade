// Package sketch turns clean vector paths into hand-drawn looking ones.
//
// # Overview
//
// A sketch pass has two stages:
//
//  1. [Subdivide] cuts every cubic segment into pieces of equal arc length, no
//     longer than a configured maximum. Lengths come from the adaptive
//     Gauss-Legendre estimator in honnef.co/go/curve, and each cut point is
//     found by solving for the parameter at a given arc length.
//  2. [Perturb] pushes each interior node sideways, perpendicular to the chord
//     from the previous node, by an amount that follows a sine of an
//     accumulated random phase. Nearby nodes move together, which gives the
//     wobble of the xkcd style rather than jitter.
//
// [Sketch] runs both stages with a [Params] value.
//
// # Reproducible Randomness
//
// The randomness comes from a [Source] passed in by the caller:
//
//	rng := sketch.NewMT19937(42)
//	out, err := sketch.Sketch(path, sketch.DefaultParams(), rng)
//
// [MT19937] is seeded and sampled exactly like Python's random.Random, so
// sketches match those made by the Inkscape extension this algorithm comes
// from. [NewPCG] is available when that compatibility does not matter.
//
// The generator is consumed in a fixed order: one draw per interior node,
// sub-path by sub-path, element by element. Processing elements in a different
// order changes the result for the same seed.
//
// The noise model is the one matplotlib uses for its xkcd mode.
package sketch
