package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/fonts"
	"github.com/matzehuels/xkcdify/pkg/observability"
	"github.com/matzehuels/xkcdify/pkg/sketch"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// MaxRunSegments bounds the total number of segments one run may write.
const MaxRunSegments = 5_000_000

// Process rewrites doc in place: fonts first, then paths. Options are
// validated before the document is touched.
//
// A path that cannot be sketched is left as it was and reported in
// Result.Failed, unless opts.Strict is set, in which case the first such
// error ends the run. Draws the generator made for a failed element are not
// given back: when an element fails after its noise was drawn, every later
// element gets different noise than it would have without the failure.
//
// A run whose paths add up to more than [MaxRunSegments] segments stops with
// ErrCodeInvalidGeometry. Cancelling ctx stops the run, also in the middle of
// an element.
//
// The returned Result has Stats and Failed filled in; Output is left empty.
func Process(ctx context.Context, doc *svg.Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	hooks := observability.Sketch()
	start := time.Now()
	result := &Result{}

	roots, err := doc.Selection(opts.Select)
	if err != nil {
		return nil, err
	}
	result.Stats.Roots = len(roots)
	hooks.OnRunStart(ctx, len(roots))

	err = process(ctx, doc, roots, opts, result)
	result.Stats.SketchTime = time.Since(start)
	hooks.OnRunComplete(ctx, result.Stats.Paths, result.Stats.Fonts, result.Stats.SketchTime, err)
	if err != nil {
		return nil, err
	}

	logger.Debug("processed document",
		"roots", result.Stats.Roots,
		"paths", result.Stats.Paths,
		"fonts", result.Stats.Fonts,
		"failed", len(result.Failed),
		"duration", result.Stats.SketchTime)
	return result, nil
}

func process(ctx context.Context, doc *svg.Document, roots []*svg.Element, opts Options, result *Result) error {
	if opts.ReplaceFont {
		family, err := opts.family()
		if err != nil {
			return err
		}
		result.Stats.Fonts = fonts.ReplaceFonts(roots, family)
		opts.Logger.Debug("replaced fonts", "family", family, "elements", result.Stats.Fonts)
	}

	maxLength, err := doc.ViewportToUnit(opts.MaxSegmentLength)
	if err != nil {
		return err
	}
	if err := errors.ValidatePositive("max segment length", maxLength); err != nil {
		return err
	}
	result.Stats.MaxLength = maxLength
	params := opts.Params(maxLength)

	rng, err := sketch.NewSource(opts.RNG, opts.Seed)
	if err != nil {
		return err
	}

	hooks := observability.Sketch()
	for el := range svg.FindRecursive(roots, svg.IsPath) {
		if err := ctx.Err(); err != nil {
			return err
		}
		in, out, err := sketchElement(ctx, el, params, rng, opts.Precision)
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			ref := el.Ref()
			elErr := &errors.ElementError{ElementID: ref, Err: err}
			hooks.OnElementFailed(ctx, ref, err)
			if opts.Strict {
				return elErr
			}
			opts.Logger.Warn("skipped element", "element", ref, "err", err)
			result.Failed = append(result.Failed, Failure{
				Element: ref,
				Code:    elErr.Code(),
				Message: err.Error(),
			})
			continue
		}
		if out == 0 {
			continue
		}
		result.Stats.Paths++
		result.Stats.InputSegments += in
		result.Stats.Segments += out
		if result.Stats.Segments > MaxRunSegments {
			return errors.New(errors.ErrCodeInvalidGeometry,
				"run needs more than %d segments at a maximum segment length of %g", MaxRunSegments, maxLength)
		}
		hooks.OnElementSketched(ctx, el.Ref(), out)
	}
	return nil
}

// sketchElement rewrites the d attribute of one path and returns the segment
// counts before and after. A path without data is skipped.
func sketchElement(ctx context.Context, el *svg.Element, params sketch.Params, rng sketch.Source, precision int) (int, int, error) {
	if el.Attr("d") == "" {
		return 0, 0, nil
	}
	path, err := el.PathData()
	if err != nil {
		return 0, 0, err
	}
	if len(path) == 0 {
		return 0, 0, nil
	}
	if err := path.Validate(); err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "path data")
	}
	out, err := sketch.SketchContext(ctx, path, params, rng)
	if err != nil {
		return 0, 0, err
	}
	if err := out.Validate(); err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidGeometry, err, "sketched path")
	}
	el.SetPathData(out, precision)
	return path.SegmentCount(), out.SegmentCount(), nil
}

// family returns the font family to write, reading it from FontFile when set.
func (o *Options) family() (string, error) {
	if o.FontFile == "" {
		return o.FontFamily, nil
	}
	return fonts.FamilyFromFile(o.FontFile)
}
