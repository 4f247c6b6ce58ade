package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xkcdify/pkg/fonts"
)

// fontsCommand creates the fonts command.
func (c *CLI) fontsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Find fonts to use with --font and --font-file",
	}

	cmd.AddCommand(c.fontsListCommand())
	cmd.AddCommand(c.fontsFamilyCommand())

	return cmd
}

// fontsListCommand creates the "fonts list" subcommand.
func (c *CLI) fontsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [dir...]",
		Short: "List the font families in the given or system font directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				dirs = systemFontDirs()
			}

			prog := newProgress(c.Logger)
			var faces []fonts.Face
			for _, dir := range dirs {
				found, err := fonts.ScanDir(dir)
				if err != nil {
					if len(args) > 0 {
						return err
					}
					c.Logger.Debug("skipping font directory", "dir", dir, "err", err)
					continue
				}
				faces = append(faces, found...)
			}
			prog.done(fmt.Sprintf("Scanned %d directories", len(dirs)))

			if len(faces) == 0 {
				printInfo("No fonts found")
				return nil
			}
			last := ""
			for _, f := range faces {
				if f.Family != last {
					fmt.Fprintln(stdout, StyleValue.Render(f.Family))
					last = f.Family
				}
				printDetail("%s", f.Path)
			}
			return nil
		},
	}
}

// fontsFamilyCommand creates the "fonts family" subcommand.
func (c *CLI) fontsFamilyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "family <font-file>",
		Short: "Print the family name stored in a .ttf or .otf file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer runner.Close()

			family, err := runner.ResolveFontFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), family)
			return nil
		},
	}
}

// systemFontDirs returns the usual font directories of the current platform.
func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	var dirs []string
	switch runtime.GOOS {
	case "darwin":
		dirs = []string{"/System/Library/Fonts", "/Library/Fonts", filepath.Join(home, "Library", "Fonts")}
	case "windows":
		dirs = []string{filepath.Join(os.Getenv("WINDIR"), "Fonts"),
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Microsoft", "Windows", "Fonts")}
	default:
		dirs = []string{"/usr/share/fonts", "/usr/local/share/fonts",
			filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts")}
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			dirs = append(dirs, filepath.Join(dataHome, "fonts"))
		}
	}
	return dirs
}
