// Package pipeline runs the xkcdify rewrite of an SVG document.
//
// One run, shared by the CLI and the HTTP API:
//
//  1. Parse the document
//  2. Resolve the selection (element ids, or the whole document)
//  3. Replace fonts on text elements, if requested
//  4. Subdivide and perturb every path under the selection
//  5. Encode the document
//
// [Process] does steps 2 to 4 on a parsed document. [Runner] wraps the whole
// run with a content-addressed cache.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Seed = 7
//	result, err := runner.Execute(ctx, svgBytes, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Output)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xkcdify/pkg/cache"
	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/fonts"
	"github.com/matzehuels/xkcdify/pkg/sketch"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxSegmentLength is the subdivision bound, converted to user
	// units of the document.
	DefaultMaxSegmentLength = "5px"

	// DefaultScale is the wobble amplitude in user units.
	DefaultScale = sketch.DefaultScale

	// DefaultWavelength is the average distance between wobble peaks.
	DefaultWavelength = sketch.DefaultWavelength

	// DefaultRandomness is the spread of the phase steps.
	DefaultRandomness = sketch.DefaultRandomness

	// DefaultRNG is the generator algorithm.
	DefaultRNG = sketch.RNGMersenne

	// DefaultFontFamily is the family written by the font replacement.
	DefaultFontFamily = fonts.DefaultFamily
)

// Format constants for outputs.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidRNGs is the set of supported generator algorithms.
var ValidRNGs = map[string]bool{
	sketch.RNGMersenne: true,
	sketch.RNGPCG:      true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one run. It supports JSON for API requests and TOML for
// preset files.
//
// Scale has no implicit default because zero is meaningful (no wobble);
// start from [DefaultOptions] to get every default.
type Options struct {
	// Font options
	ReplaceFont bool   `json:"replace_font,omitempty" toml:"replace_font"`
	FontFamily  string `json:"font_family,omitempty" toml:"font_family"`
	FontFile    string `json:"font_file,omitempty" toml:"font_file"` // read the family from this .ttf/.otf

	// Sketch options
	MaxSegmentLength string  `json:"max_segment_length,omitempty" toml:"max_segment_length"` // length with unit, e.g. "2mm"
	Scale            float64 `json:"scale" toml:"scale"`
	Wavelength       float64 `json:"wavelength,omitempty" toml:"wavelength"`
	Randomness       float64 `json:"randomness,omitempty" toml:"randomness"`
	Seed             int64   `json:"seed" toml:"seed"`
	RNG              string  `json:"rng,omitempty" toml:"rng"`

	// Selection and output
	Select    []string `json:"select,omitempty" toml:"select"`
	Precision int      `json:"precision,omitempty" toml:"precision"` // digits after the point; 0 = shortest exact
	Format    string   `json:"format,omitempty" toml:"format"`
	Strict    bool     `json:"strict,omitempty" toml:"strict"` // fail the run on the first element error
	Refresh   bool     `json:"refresh,omitempty" toml:"-"`     // ignore cached results

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options with every default filled in.
func DefaultOptions() Options {
	return Options{
		FontFamily:       DefaultFontFamily,
		MaxSegmentLength: DefaultMaxSegmentLength,
		Scale:            DefaultScale,
		Wavelength:       DefaultWavelength,
		Randomness:       DefaultRandomness,
		RNG:              DefaultRNG,
		Format:           FormatSVG,
	}
}

// Result is the outcome of a run.
type Result struct {
	// Output is the encoded document.
	Output []byte `json:"output"`

	// Failed lists the elements left untouched because of an error.
	Failed []Failure `json:"failed,omitempty"`

	// Stats contains counts and timings.
	Stats Stats `json:"stats"`

	// CacheHit reports whether Output came from the cache.
	CacheHit bool `json:"-"`
}

// Failure describes an element that could not be sketched.
type Failure struct {
	Element string      `json:"element"` // id, or a path like "svg/g[0]/path[2]"
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// Stats contains run statistics.
type Stats struct {
	Roots         int           `json:"roots"`          // selection roots
	Fonts         int           `json:"fonts"`          // text elements restyled
	Paths         int           `json:"paths"`          // path elements rewritten
	InputSegments int           `json:"input_segments"` // before subdivision
	Segments      int           `json:"segments"`       // after subdivision
	MaxLength     float64       `json:"max_length"`     // subdivision bound in user units
	ParseTime     time.Duration `json:"parse_time"`
	SketchTime    time.Duration `json:"sketch_time"`
	EncodeTime    time.Duration `json:"encode_time"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateRNG checks that a generator name is valid.
func ValidateRNG(rng string) error {
	if !ValidRNGs[rng] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid rng: %q (must be one of: mt19937, pcg)", rng)
	}
	return nil
}

// ValidateMaxSegmentLength checks the syntax and sign of a length. The
// conversion to user units needs the document and happens in [Process].
func ValidateMaxSegmentLength(s string) error {
	l, err := svg.ParseLength(s)
	if err != nil {
		return err
	}
	if l.Value <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max segment length must be positive, got %q", s)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults fills empty fields with defaults and checks every
// option, before any document is touched. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if err := ValidateMaxSegmentLength(o.MaxSegmentLength); err != nil {
		return err
	}
	if err := o.Params(1).Validate(); err != nil {
		return err
	}
	if err := ValidateRNG(o.RNG); err != nil {
		return err
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Precision < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "precision cannot be negative, got %d", o.Precision)
	}
	for _, id := range o.Select {
		if err := errors.ValidateElementID(id); err != nil {
			return err
		}
	}
	if o.ReplaceFont {
		if o.FontFile != "" {
			if err := errors.ValidateFontPath(o.FontFile); err != nil {
				return err
			}
		} else if err := errors.ValidateFontFamily(o.FontFamily); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}

// SetDefaults fills the empty fields that have a default. Scale is left
// alone.
func (o *Options) SetDefaults() {
	if o.FontFamily == "" {
		o.FontFamily = DefaultFontFamily
	}
	if o.MaxSegmentLength == "" {
		o.MaxSegmentLength = DefaultMaxSegmentLength
	}
	if o.Wavelength == 0 {
		o.Wavelength = DefaultWavelength
	}
	if o.Randomness == 0 {
		o.Randomness = DefaultRandomness
	}
	if o.RNG == "" {
		o.RNG = DefaultRNG
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Params returns the sketch parameters for a subdivision bound already
// converted to user units.
func (o *Options) Params(maxLength float64) sketch.Params {
	return sketch.Params{
		MaxSegmentLength: maxLength,
		Scale:            o.Scale,
		Wavelength:       o.Wavelength,
		Randomness:       o.Randomness,
	}
}

// SketchKeyOpts returns cache key options covering everything that changes
// the output.
func (o *Options) SketchKeyOpts() cache.SketchKeyOpts {
	k := cache.SketchKeyOpts{
		MaxSegmentLength: o.MaxSegmentLength,
		Scale:            o.Scale,
		Wavelength:       o.Wavelength,
		Randomness:       o.Randomness,
		Seed:             o.Seed,
		RNG:              o.RNG,
		Select:           o.Select,
		Precision:        o.Precision,
		ReplaceFont:      o.ReplaceFont,
		Strict:           o.Strict,
	}
	if o.ReplaceFont {
		k.FontFamily = o.FontFamily
	}
	return k
}
