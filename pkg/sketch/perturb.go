package sketch

import (
	"math"

	"honnef.co/go/curve"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/geom"
)

// Perturb displaces the interior nodes of every sub-path perpendicular to the
// chord from the previous node, by sin(p*2π/(wavelength*randomness))*scale,
// where the phase p grows by exp(u*2*ln(randomness)) per node for a uniform
// draw u. The first and last node of each sub-path stay put. The input path
// is not modified.
//
// One value is drawn from rng per interior node, sub-path by sub-path, so the
// result depends only on the input, the parameters and the state of rng.
func Perturb(path geom.Path, scale, wavelength, randomness float64, rng Source) (geom.Path, error) {
	if err := errors.ValidateFinite("scale", scale); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive("wavelength", wavelength); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive("randomness", randomness); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "random source is required")
	}

	logRandomness := 2.0 * math.Log(randomness)
	angularScale := (2 * math.Pi) / (wavelength * randomness)

	out := path.Clone()
	for i := range out {
		perturbSubPath(out[i].Nodes, scale, logRandomness, angularScale, rng)
	}
	return out, nil
}

func perturbSubPath(nodes []geom.Node, scale, logRandomness, angularScale float64, rng Source) {
	if len(nodes) < 3 {
		return
	}
	p := 0.0
	lastX, lastY := nodes[0].Anchor.X, nodes[0].Anchor.Y

	for i := 1; i < len(nodes)-1; i++ {
		u := rng.Float64()
		p += math.Exp(u * logRandomness)

		cur := nodes[i].Anchor
		den := lastX - cur.X
		num := lastY - cur.Y
		lastX, lastY = cur.X, cur.Y

		hyp := num*num + den*den
		if hyp == 0 {
			continue
		}
		hyp = math.Sqrt(hyp)
		r := math.Sin(p*angularScale) * scale
		rOverHyp := r / hyp
		dx := rOverHyp * num
		dy := rOverHyp * den
		nodes[i] = nodes[i].Translate(curve.Vec(dx, -dy))
	}
}
