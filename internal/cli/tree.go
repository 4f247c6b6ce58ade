package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/outline"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// Output formats of the tree command.
const (
	treeText = "text"
	treeDOT  = "dot"
	treeSVG  = "svg"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	output   string
	format   string
	selected []string
	fonts    bool
	detailed bool
}

// treeCommand creates the tree command for inspecting a document.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{format: treeText}

	cmd := &cobra.Command{
		Use:   "tree [input.svg]",
		Short: "Show the element tree and what a sketch run would touch",
		Long: `Show the element tree of an SVG document.

Paths the sketch command would redraw are marked, as are the text elements
whose font --replace-font would change. Use --select to see the effect of a
selection. The tree can be printed as text, or as a Graphviz graph in DOT or
rendered SVG form.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinName
			if len(args) == 1 {
				input = args[0]
			}
			return c.runTree(cmd, input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text (default), dot, svg")
	cmd.Flags().StringSliceVar(&opts.selected, "select", nil, "ids of the elements a run would start from")
	cmd.Flags().BoolVar(&opts.fonts, "replace-font", false, "mark text elements whose font would be replaced")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show labels and element paths")

	return cmd
}

// runTree loads the document and writes its outline.
func (c *CLI) runTree(cmd *cobra.Command, input string, opts treeOpts) error {
	data, err := readInput(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}
	doc, err := svg.Parse(bytes.NewReader(data))
	if err != nil {
		return err
	}
	roots, err := doc.Selection(opts.selected)
	if err != nil {
		return err
	}
	o := outline.Options{Fonts: opts.fonts, Detailed: opts.detailed}

	var out []byte
	switch opts.format {
	case treeText:
		out = []byte(formatTree(outline.Walk(doc, roots, o), opts.detailed))
	case treeDOT:
		out = []byte(outline.ToDOT(doc, roots, o))
	case treeSVG:
		c.Logger.Debug("rendering outline with graphviz")
		out, err = outline.RenderSVG(cmd.Context(), outline.ToDOT(doc, roots, o))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render outline")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be text, dot or svg)", opts.format)
	}

	if opts.output == "" || opts.output == stdinName {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := writeFile(opts.output, out); err != nil {
		return err
	}
	printSuccess("Wrote outline of %s", displayName(input))
	printFile(opts.output)
	if input != stdinName {
		printNewline()
		printNextStep("Sketch", sketchHint(input, opts))
	}
	return nil
}

// formatTree renders an outline as indented text, one element per line.
func formatTree(entries []outline.Entry, detailed bool) string {
	var b strings.Builder
	var paths, texts int
	for _, en := range entries {
		label := outline.Label(en.Element, false)
		if detailed {
			if l := en.Element.Label(); l != "" {
				label += fmt.Sprintf(" %q", l)
			}
			label += " " + StyleDim.Render(en.Element.Path())
		}

		var mark string
		switch en.State {
		case outline.StateOutside:
			label = StyleDim.Render(label)
		case outline.StateSketched:
			mark = styleSketched.Render("~ sketch")
			paths++
		case outline.StateRestyled:
			mark = styleRestyled.Render("A font")
			texts++
		}
		if en.Root {
			label = StyleHighlight.Render("▸ ") + label
		} else {
			label = "  " + label
		}

		b.WriteString(strings.Repeat("  ", en.Depth))
		b.WriteString(label)
		if mark != "" {
			b.WriteString("  " + mark)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\n%d paths to sketch", paths)
	if texts > 0 {
		fmt.Fprintf(&b, ", %d text elements to restyle", texts)
	}
	b.WriteByte('\n')
	return b.String()
}

// sketchHint is the sketch command matching a tree invocation.
func sketchHint(input string, opts treeOpts) string {
	hint := appName + " sketch " + input
	if len(opts.selected) > 0 {
		hint += " --select " + strings.Join(opts.selected, ",")
	}
	if opts.fonts {
		hint += " --replace-font"
	}
	return hint
}
