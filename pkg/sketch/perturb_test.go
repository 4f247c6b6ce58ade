package sketch

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/geom"
)

func TestPerturbReferenceValues(t *testing.T) {
	path := geom.Path{polyline(false, pt(0, 0), pt(10, 0), pt(20, 5), pt(30, 0), pt(40, 0))}

	out, err := Perturb(path, 3, 16, 2, NewMT19937(42))
	if err != nil {
		t.Fatal(err)
	}

	want := []geom.Point{
		pt(0, 0),
		pt(10, 1.3758409421889257),
		pt(19.156686844687883, 6.6866263106242325),
		pt(31.104568984425512, 2.209137968851026),
		pt(40, 0),
	}
	for i, n := range out[0].Nodes {
		got := n.Anchor
		if math.Abs(got.X-want[i].X) > 1e-9 || math.Abs(got.Y-want[i].Y) > 1e-9 {
			t.Errorf("node %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestPerturbMovesNodeRigidly(t *testing.T) {
	nodes := []geom.Node{
		geom.Corner(pt(0, 0)),
		{In: pt(8, -2), Anchor: pt(10, 0), Out: pt(12, 2)},
		geom.Corner(pt(20, 0)),
	}
	path := geom.Path{{Nodes: nodes}}

	out, err := Perturb(path, 4, 10, 3, NewMT19937(1))
	if err != nil {
		t.Fatal(err)
	}
	in, got := nodes[1], out[0].Nodes[1]
	d := got.Anchor.Sub(in.Anchor)
	for _, h := range []struct{ before, after geom.Point }{{in.In, got.In}, {in.Out, got.Out}} {
		hd := h.after.Sub(h.before)
		if math.Abs(hd.X-d.X) > 1e-12 || math.Abs(hd.Y-d.Y) > 1e-12 {
			t.Errorf("handle moved by %v, anchor by %v", hd, d)
		}
	}
	if d.Y == 0 {
		t.Error("interior node was not displaced")
	}
	if d.X != 0 {
		t.Errorf("horizontal chord should displace vertically only, got %v", d)
	}
}

func TestPerturbEndpointsFixed(t *testing.T) {
	path := geom.Path{
		polyline(false, pt(0, 0), pt(3, 4), pt(9, 1), pt(12, 12), pt(2, 8)),
		polyline(true, pt(-1, -1), pt(4, -1), pt(4, 4), pt(-1, -1)),
	}

	out, err := Perturb(path, 5, 4, 2.5, NewMT19937(7))
	if err != nil {
		t.Fatal(err)
	}
	for i := range path {
		if out[i].First() != path[i].First() {
			t.Errorf("subpath %d first node moved", i)
		}
		if out[i].Last() != path[i].Last() {
			t.Errorf("subpath %d last node moved", i)
		}
		if out[i].Closed != path[i].Closed {
			t.Errorf("subpath %d closure changed", i)
		}
	}
}

func TestPerturbDeterministic(t *testing.T) {
	path, err := Subdivide(square(), 1)
	if err != nil {
		t.Fatal(err)
	}

	a, err := Perturb(path, 3, 16, 2, NewMT19937(123))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Perturb(path, 3, 16, 2, NewMT19937(123))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different paths (-first +second):\n%s", diff)
	}

	c, err := Perturb(path, 3, 16, 2, NewMT19937(124))
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Equal(a, c) {
		t.Error("different seeds gave identical paths")
	}
}

func TestPerturbZeroScale(t *testing.T) {
	path, err := Subdivide(square(), 5)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Perturb(path, 0, 16, 2, NewMT19937(0))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(path, out); diff != "" {
		t.Errorf("zero scale changed the path (-want +got):\n%s", diff)
	}
}

func TestPerturbDegenerate(t *testing.T) {
	tests := []struct {
		name string
		path geom.Path
	}{
		{"coincident", geom.Path{polyline(false, pt(0, 0), pt(0, 0), pt(0, 0), pt(5, 5), pt(10, 0))}},
		{"single node", geom.Path{polyline(false, pt(1, 1))}},
		{"two nodes", geom.Path{polyline(false, pt(1, 1), pt(2, 2))}},
		{"empty path", geom.Path{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Perturb(tt.path, 3, 16, 2, NewMT19937(0))
			if err != nil {
				t.Fatal(err)
			}
			if err := out.Validate(); err != nil {
				t.Errorf("output not finite: %v", err)
			}
		})
	}
}

func TestPerturbShortSubPathDrawsNothing(t *testing.T) {
	rng := NewMT19937(9)
	if _, err := Perturb(geom.Path{polyline(false, pt(0, 0), pt(1, 1))}, 3, 16, 2, rng); err != nil {
		t.Fatal(err)
	}
	if got, want := rng.Float64(), NewMT19937(9).Float64(); got != want {
		t.Error("two-node subpath consumed random draws")
	}
}

func TestPerturbHugeRandomness(t *testing.T) {
	pts := make([]geom.Point, 100)
	for i := range pts {
		pts[i] = pt(float64(i), math.Sin(float64(i)/7))
	}
	path := geom.Path{polyline(false, pts...)}

	out, err := Perturb(path, 3, 16, 10000, NewMT19937(10000))
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("huge randomness produced non-finite output: %v", err)
	}
}

func TestPerturbDoesNotMutateInput(t *testing.T) {
	path := geom.Path{polyline(false, pt(0, 0), pt(10, 0), pt(20, 5), pt(30, 0))}
	before := path.Clone()
	if _, err := Perturb(path, 3, 16, 2, NewMT19937(1)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, path, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestPerturbErrors(t *testing.T) {
	path := square()
	tests := []struct {
		name                          string
		scale, wavelength, randomness float64
		rng                           Source
	}{
		{"zero wavelength", 3, 0, 2, NewMT19937(0)},
		{"negative randomness", 3, 16, -1, NewMT19937(0)},
		{"infinite scale", math.Inf(1), 16, 2, NewMT19937(0)},
		{"nan wavelength", 3, math.NaN(), 2, NewMT19937(0)},
		{"nil source", 3, 16, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Perturb(path, tt.scale, tt.wavelength, tt.randomness, tt.rng)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}
