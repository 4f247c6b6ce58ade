package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/sketch"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

func mustParse(t *testing.T, s string) *svg.Document {
	t.Helper()
	doc, err := svg.ParseString(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// expectedPaths sketches each d in order with one generator, the way Process
// walks a document.
func expectedPaths(t *testing.T, params sketch.Params, seed int64, ds ...string) []string {
	t.Helper()
	rng := sketch.NewMT19937(seed)
	out := make([]string, len(ds))
	for i, d := range ds {
		path, err := svg.ParsePathData(d)
		if err != nil {
			t.Fatalf("ParsePathData(%q): %v", d, err)
		}
		sk, err := sketch.Sketch(path, params, rng)
		if err != nil {
			t.Fatalf("Sketch: %v", err)
		}
		out[i] = svg.FormatPathData(sk, 0)
	}
	return out
}

const squareDoc = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">` +
	`<path id="sq" d="M0,0 L10,0 L10,10 L0,10 Z"/></svg>`

func TestProcessSquareWithoutWobble(t *testing.T) {
	doc := mustParse(t, squareDoc)
	opts := DefaultOptions()
	opts.MaxSegmentLength = "5"
	opts.Scale = 0

	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := Stats{Roots: 1, Paths: 1, InputSegments: 4, Segments: 8, MaxLength: 5}
	got := res.Stats
	got.SketchTime = 0
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if len(res.Failed) != 0 {
		t.Errorf("Failed = %v", res.Failed)
	}

	path, err := doc.ByID("sq").PathData()
	if err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	if len(path) != 1 || !path[0].Closed {
		t.Fatalf("output path = %+v, want one closed sub-path", path)
	}
	wantAnchors := [][2]float64{{0, 0}, {5, 0}, {10, 0}, {10, 5}, {10, 10}, {5, 10}, {0, 10}, {0, 5}, {0, 0}}
	if len(path[0].Nodes) != len(wantAnchors) {
		t.Fatalf("got %d nodes, want %d", len(path[0].Nodes), len(wantAnchors))
	}
	for i, n := range path[0].Nodes {
		w := wantAnchors[i]
		if math.Abs(n.Anchor.X-w[0]) > 1e-4 || math.Abs(n.Anchor.Y-w[1]) > 1e-4 {
			t.Errorf("node %d anchor = %v, want %v", i, n.Anchor, w)
		}
	}
}

func TestProcessConvertsUnits(t *testing.T) {
	doc := mustParse(t, `<svg xmlns="http://www.w3.org/2000/svg" width="100mm" height="100mm" viewBox="0 0 100 100">`+
		`<path d="M0,0 L10,0"/></svg>`)
	opts := DefaultOptions()
	opts.MaxSegmentLength = "2mm"

	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if math.Abs(res.Stats.MaxLength-2) > 1e-9 {
		t.Errorf("MaxLength = %g, want 2", res.Stats.MaxLength)
	}
	if res.Stats.Segments != 5 {
		t.Errorf("Segments = %d, want 5", res.Stats.Segments)
	}
}

func TestProcessMatchesSketchInDocumentOrder(t *testing.T) {
	d1 := "M0,0 C20,0 20,20 40,20"
	d2 := "M0,50 L60,50 L60,80"
	doc := mustParse(t, `<svg xmlns="http://www.w3.org/2000/svg">`+
		`<g><path id="p1" d="`+d1+`"/></g><path id="p2" d="`+d2+`"/></svg>`)

	opts := DefaultOptions()
	opts.MaxSegmentLength = "4"
	opts.Seed = 7
	if _, err := Process(context.Background(), doc, opts); err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := expectedPaths(t, sketch.Params{MaxSegmentLength: 4, Scale: 3, Wavelength: 16, Randomness: 2}, 7, d1, d2)
	for i, id := range []string{"p1", "p2"} {
		if got := doc.ByID(id).Attr("d"); got != want[i] {
			t.Errorf("%s d = %q\nwant %q", id, got, want[i])
		}
	}
}

func TestProcessDeterministic(t *testing.T) {
	run := func(seed int64, rng string) string {
		doc := mustParse(t, squareDoc)
		opts := DefaultOptions()
		opts.Seed = seed
		opts.RNG = rng
		if _, err := Process(context.Background(), doc, opts); err != nil {
			t.Fatalf("Process: %v", err)
		}
		return doc.ByID("sq").Attr("d")
	}

	for _, rng := range []string{sketch.RNGMersenne, sketch.RNGPCG} {
		t.Run(rng, func(t *testing.T) {
			if run(42, rng) != run(42, rng) {
				t.Error("same seed should give the same output")
			}
			if run(42, rng) == run(43, rng) {
				t.Error("different seeds should give different output")
			}
		})
	}
}

func TestProcessIsolatesFailures(t *testing.T) {
	const bad = "M0 0 C1 1 2 2"
	d1 := "M0,0 L30,0"
	d2 := "M0,10 L30,10"
	src := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<path id="p1" d="` + d1 + `"/><path id="bad" d="` + bad + `"/><path id="p2" d="` + d2 + `"/></svg>`

	doc := mustParse(t, src)
	opts := DefaultOptions()
	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("Failed = %+v, want one entry", res.Failed)
	}
	if f := res.Failed[0]; f.Element != "bad" || f.Code != errors.ErrCodeInvalidPathData {
		t.Errorf("Failed[0] = %+v", f)
	}
	if got := doc.ByID("bad").Attr("d"); got != bad {
		t.Errorf("failed element was modified: %q", got)
	}
	if res.Stats.Paths != 2 {
		t.Errorf("Paths = %d, want 2", res.Stats.Paths)
	}

	// The failed element drew nothing, so p2 continues p1's sequence.
	want := expectedPaths(t, opts.Params(5), 0, d1, d2)
	if got := doc.ByID("p2").Attr("d"); got != want[1] {
		t.Errorf("p2 d = %q, want %q", got, want[1])
	}
}

func TestProcessStrict(t *testing.T) {
	doc := mustParse(t, `<svg xmlns="http://www.w3.org/2000/svg"><g id="layer"><path d="M0 0 L5"/></g></svg>`)
	opts := DefaultOptions()
	opts.Strict = true

	_, err := Process(context.Background(), doc, opts)
	var elErr *errors.ElementError
	if !stderrors.As(err, &elErr) {
		t.Fatalf("err = %v, want *ElementError", err)
	}
	if elErr.ElementID != "svg/g[0]/path[0]" {
		t.Errorf("ElementID = %q", elErr.ElementID)
	}
	if !errors.Is(err, errors.ErrCodeInvalidPathData) {
		t.Errorf("err = %v, want code %s", err, errors.ErrCodeInvalidPathData)
	}
}

func TestProcessSelection(t *testing.T) {
	const dA, dB = "M0,0 L20,0", "M0,5 L20,5"
	src := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<g id="g1"><path id="a" d="` + dA + `"/></g><path id="b" d="` + dB + `"/></svg>`

	doc := mustParse(t, src)
	opts := DefaultOptions()
	opts.Select = []string{"g1"}
	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Stats.Roots != 1 || res.Stats.Paths != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if doc.ByID("a").Attr("d") == dA {
		t.Error("selected path was not sketched")
	}
	if doc.ByID("b").Attr("d") != dB {
		t.Error("unselected path was sketched")
	}

	opts.Select = []string{"missing"}
	if _, err := Process(context.Background(), mustParse(t, src), opts); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown id: err = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestProcessSkipsEmptyPaths(t *testing.T) {
	doc := mustParse(t, `<svg xmlns="http://www.w3.org/2000/svg"><path id="e"/><path id="m" d="M3,4"/></svg>`)
	res, err := Process(context.Background(), doc, DefaultOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Stats.Paths != 0 || len(res.Failed) != 0 {
		t.Errorf("Stats = %+v, Failed = %v", res.Stats, res.Failed)
	}
	if doc.ByID("e").Has("d") {
		t.Error("Process added d to a path without one")
	}
}

func TestProcessReplacesFonts(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<text id="t" style="font-family:Arial;fill:red">hi<tspan id="s" style="font-family:Arial">x</tspan></text>` +
		`<text id="plain">no style</text></svg>`

	doc := mustParse(t, src)
	opts := DefaultOptions()
	opts.ReplaceFont = true
	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Stats.Fonts != 2 {
		t.Errorf("Fonts = %d, want 2", res.Stats.Fonts)
	}
	st := doc.ByID("t").Style()
	if v, _ := st.Get("font-family"); v != DefaultFontFamily {
		t.Errorf("text font-family = %q", v)
	}
	if v, _ := st.Get("fill"); v != "red" {
		t.Errorf("other declarations should survive, fill = %q", v)
	}
	if doc.ByID("s").Style().Has("font-family") {
		t.Error("tspan should inherit the font from its text")
	}
	if doc.ByID("plain").Has("style") {
		t.Error("text without a style should be left alone")
	}

	// Without the option fonts are untouched.
	doc = mustParse(t, src)
	if _, err := Process(context.Background(), doc, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if v, _ := doc.ByID("t").Style().Get("font-family"); v != "Arial" {
		t.Errorf("font-family = %q without ReplaceFont", v)
	}
}

func TestProcessPercentageNeedsViewport(t *testing.T) {
	doc := mustParse(t, `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0,0 L9,0"/></svg>`)
	opts := DefaultOptions()
	opts.MaxSegmentLength = "5%"
	if _, err := Process(context.Background(), doc, opts); !errors.Is(err, errors.ErrCodeInvalidUnit) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidUnit)
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Process(ctx, mustParse(t, squareDoc), DefaultOptions())
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestProcessInvalidOptionsLeaveDocument(t *testing.T) {
	doc := mustParse(t, squareDoc)
	before := doc.String()
	opts := DefaultOptions()
	opts.Wavelength = -1
	if _, err := Process(context.Background(), doc, opts); err == nil {
		t.Fatal("expected error")
	}
	if doc.String() != before {
		t.Error("document changed despite invalid options")
	}
}

func TestProcessNodeBudget(t *testing.T) {
	// Five unit segments at this length need about 4.5 million nodes.
	const tiny = `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<path id="big" d="M0,0 h1 h1 h1 h1 h1"/></svg>`

	opts := DefaultOptions()
	opts.MaxSegmentLength = "0.0000011"
	doc := mustParse(t, tiny)
	before := doc.ByID("big").Attr("d")

	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].Element != "big" || res.Failed[0].Code != errors.ErrCodeInvalidGeometry {
		t.Errorf("Failed = %+v", res.Failed)
	}
	if got := doc.ByID("big").Attr("d"); got != before {
		t.Errorf("rejected path was rewritten: %s", got)
	}
	if res.Stats.Paths != 0 {
		t.Errorf("Paths = %d, want 0", res.Stats.Paths)
	}

	opts.Strict = true
	if _, err := Process(context.Background(), mustParse(t, tiny), opts); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Errorf("strict err = %v, want %s", err, errors.ErrCodeInvalidGeometry)
	}
}

func TestProcessDeadlineInsideElement(t *testing.T) {
	// A single segment cut into about 900000 pieces fits the node budget.
	const long = `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0,0 h1"/></svg>`

	opts := DefaultOptions()
	opts.MaxSegmentLength = "0.0000011"
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Process(ctx, mustParse(t, long), opts)
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Process returned after %s", elapsed)
	}
}

func TestProcessFailureAfterDrawsShiftsLaterNoise(t *testing.T) {
	// Nodes at the largest float overflow once displaced, so "wild" fails
	// only after all of its noise was drawn: one draw per interior node.
	const maxX = "1.7976931348623157e308"
	var wild strings.Builder
	wild.WriteString("M" + maxX + ",0")
	for i := 1; i < 10; i++ {
		fmt.Fprintf(&wild, " L%s,%d", maxX, i%2)
	}
	const interior = 8
	const d2 = "M0,10 L30,10"
	src := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<path id="wild" d="` + wild.String() + `"/><path id="p2" d="` + d2 + `"/></svg>`

	opts := DefaultOptions()
	opts.MaxSegmentLength = "5"
	opts.Scale = math.MaxFloat64
	doc := mustParse(t, src)
	res, err := Process(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(res.Failed) != 1 || res.Failed[0].Element != "wild" || res.Failed[0].Code != errors.ErrCodeInvalidGeometry {
		t.Fatalf("Failed = %+v", res.Failed)
	}

	rng := sketch.NewMT19937(opts.Seed)
	for range interior {
		rng.Float64()
	}
	path, err := svg.ParsePathData(d2)
	if err != nil {
		t.Fatal(err)
	}
	shifted, err := sketch.Sketch(path, opts.Params(5), rng)
	if err != nil {
		t.Fatal(err)
	}
	got := doc.ByID("p2").Attr("d")
	if want := svg.FormatPathData(shifted, 0); got != want {
		t.Errorf("p2 d = %q, want the sequence after %d draws: %q", got, interior, want)
	}
	if fresh := expectedPaths(t, opts.Params(5), opts.Seed, d2)[0]; got == fresh {
		t.Error("p2 got the noise it would have had without the failed element")
	}
}
