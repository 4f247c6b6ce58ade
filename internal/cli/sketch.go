package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/pipeline"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// stdinName is the input argument that reads the document from stdin.
const stdinName = "-"

// sketchFlags holds the command-line flags for the sketch command.
type sketchFlags struct {
	opts   pipeline.Options // targets of the option flags
	preset string
	output string
	pick   bool
}

// optionFlags maps each option flag to the field it sets. A flag is copied
// over the config file only when it was given on the command line.
var optionFlags = map[string]func(dst, src *pipeline.Options){
	"max-segment-length": func(d, s *pipeline.Options) { d.MaxSegmentLength = s.MaxSegmentLength },
	"scale":              func(d, s *pipeline.Options) { d.Scale = s.Scale },
	"wavelength":         func(d, s *pipeline.Options) { d.Wavelength = s.Wavelength },
	"randomness":         func(d, s *pipeline.Options) { d.Randomness = s.Randomness },
	"seed":               func(d, s *pipeline.Options) { d.Seed = s.Seed },
	"rng":                func(d, s *pipeline.Options) { d.RNG = s.RNG },
	"select":             func(d, s *pipeline.Options) { d.Select = s.Select },
	"precision":          func(d, s *pipeline.Options) { d.Precision = s.Precision },
	"format":             func(d, s *pipeline.Options) { d.Format = s.Format },
	"strict":             func(d, s *pipeline.Options) { d.Strict = s.Strict },
	"refresh":            func(d, s *pipeline.Options) { d.Refresh = s.Refresh },
	"replace-font":       func(d, s *pipeline.Options) { d.ReplaceFont = s.ReplaceFont },
	"font":               func(d, s *pipeline.Options) { d.FontFamily, d.ReplaceFont = s.FontFamily, true },
	"font-file":          func(d, s *pipeline.Options) { d.FontFile, d.ReplaceFont = s.FontFile, true },
}

// mergeFlags copies the option flags given on the command line from src
// into dst.
func mergeFlags(cmd *cobra.Command, dst, src *pipeline.Options) {
	for name, set := range optionFlags {
		if cmd.Flags().Changed(name) {
			set(dst, src)
		}
	}
	// --replace-font=false wins over an implied true from --font.
	if cmd.Flags().Changed("replace-font") {
		dst.ReplaceFont = src.ReplaceFont
	}
}

// sketchCommand creates the sketch command.
func (c *CLI) sketchCommand() *cobra.Command {
	f := sketchFlags{opts: pipeline.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "sketch [input.svg]",
		Short: "Redraw an SVG document as if drawn by hand",
		Long: `Redraw the paths of an SVG document as if drawn by hand.

Every path is split into short segments which are then displaced with smooth
random noise. With --replace-font, the fonts of text elements are replaced
as well (Humor Sans by default).

The document is read from the given file, or from stdin when no file or "-"
is given, and written to stdout unless --output is set. Runs are
deterministic for a given --seed, and results are cached locally.

Options come from the config file, then --preset, then flags.`,
		Example: `  xkcdify sketch chart.svg -o chart-xkcd.svg
  xkcdify sketch --scale 2 --max-segment-length 2mm --replace-font < in.svg > out.svg
  xkcdify sketch chart.svg --select layer1,legend --seed 7
  xkcdify sketch chart.svg --pick -o out.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinName
			if len(args) == 1 {
				input = args[0]
			}
			return c.runSketch(cmd, input, &f)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "named preset from the config file")
	cmd.Flags().BoolVar(&f.pick, "pick", false, "choose the elements to sketch interactively")
	cmd.Flags().StringVarP(&f.opts.Format, "format", "f", f.opts.Format, "output format: svg (default), json")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached results")

	// Sketch flags
	cmd.Flags().StringVar(&f.opts.MaxSegmentLength, "max-segment-length", f.opts.MaxSegmentLength, "longest segment before perturbation, with unit (e.g. 2mm, 5px, 1%)")
	cmd.Flags().Float64Var(&f.opts.Scale, "scale", f.opts.Scale, "noise amplitude in user units (0 disables the wobble)")
	cmd.Flags().Float64Var(&f.opts.Wavelength, "wavelength", f.opts.Wavelength, "noise wavelength")
	cmd.Flags().Float64Var(&f.opts.Randomness, "randomness", f.opts.Randomness, "randomness exponent")
	cmd.Flags().Int64Var(&f.opts.Seed, "seed", f.opts.Seed, "random seed")
	cmd.Flags().StringVar(&f.opts.RNG, "rng", f.opts.RNG, "random generator: mt19937 (default), pcg")
	cmd.Flags().StringSliceVar(&f.opts.Select, "select", nil, "ids of the elements to sketch (default: whole document)")
	cmd.Flags().IntVar(&f.opts.Precision, "precision", 0, "digits after the decimal point (0: shortest exact)")
	cmd.Flags().BoolVar(&f.opts.Strict, "strict", false, "fail on the first path that cannot be sketched")

	// Font flags
	cmd.Flags().BoolVar(&f.opts.ReplaceFont, "replace-font", false, "replace the font of text elements")
	cmd.Flags().StringVar(&f.opts.FontFamily, "font", f.opts.FontFamily, "font family to write (implies --replace-font)")
	cmd.Flags().StringVar(&f.opts.FontFile, "font-file", "", "read the font family from a .ttf or .otf file (implies --replace-font)")

	_ = cmd.RegisterFlagCompletionFunc("rng", completeKeys(pipeline.ValidRNGs))
	_ = cmd.RegisterFlagCompletionFunc("format", completeKeys(pipeline.ValidFormats))
	_ = cmd.RegisterFlagCompletionFunc("preset", c.completePresets)
	_ = cmd.MarkFlagFilename("font-file", "ttf", "otf")

	return cmd
}

// sketchReport is the JSON form of a result.
type sketchReport struct {
	Output string             `json:"output"`
	Failed []pipeline.Failure `json:"failed"`
	Stats  pipeline.Stats     `json:"stats"`
	Cached bool               `json:"cached"`
}

// runSketch reads the input, runs the pipeline and writes the output.
func (c *CLI) runSketch(cmd *cobra.Command, input string, f *sketchFlags) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.Options(f.preset)
	if err != nil {
		return err
	}
	mergeFlags(cmd, &opts, &f.opts)
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	data, err := readInput(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}

	if f.pick {
		if input == stdinName {
			return errors.New(errors.ErrCodeInvalidConfig, "--pick needs an input file, not stdin")
		}
		doc, err := svg.Parse(bytes.NewReader(data))
		if err != nil {
			return err
		}
		ids, ok, err := pickElements(ctx, doc, opts.Select)
		if err != nil {
			return err
		}
		if !ok {
			printDetail("No selection made")
			return nil
		}
		opts.Select = ids
	}

	runner, err := c.newRunner(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Sketching "+displayName(input)+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, data, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	out, err := encodeResult(res, opts.Format)
	if err != nil {
		return err
	}

	if f.output == "" || f.output == stdinName {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := writeFile(f.output, out); err != nil {
		return err
	}

	printSuccess("Sketched %s", displayName(input))
	printFile(f.output)
	printStats(res.Stats, len(res.Failed), res.CacheHit)
	for _, fl := range res.Failed {
		printWarning("%s: %s", fl.Element, fl.Message)
	}
	return nil
}

// encodeResult renders res in the requested format.
func encodeResult(res *pipeline.Result, format string) ([]byte, error) {
	if format != pipeline.FormatJSON {
		return res.Output, nil
	}
	failed := res.Failed
	if failed == nil {
		failed = []pipeline.Failure{}
	}
	data, err := json.MarshalIndent(sketchReport{
		Output: string(res.Output),
		Failed: failed,
		Stats:  res.Stats,
		Cached: res.CacheHit,
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode result")
	}
	return append(data, '\n'), nil
}

// readInput reads a document from a file, or from stdin for "-".
func readInput(stdin io.Reader, input string) ([]byte, error) {
	if input == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "input %s", input)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", input)
	}
	return data, nil
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

func displayName(input string) string {
	if input == stdinName {
		return "stdin"
	}
	return filepath.Base(input)
}

