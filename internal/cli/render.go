package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/render/nodelink"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"

	defaultPNGScale = 2.0
)

var validFormats = map[string]bool{formatSVG: true, formatPNG: true, formatDOT: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	projectID string
	output    string   // output file, or base path for several formats; "-" for stdout
	formats   []string // svg, png, dot
	detailed  bool     // durations, dates and float in node labels
	topDown   bool     // rank top to bottom instead of left to right
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [project.json]",
		Short: "Draw the task network",
		Long: `Render draws the task network with critical tasks and edges highlighted.
Tasks are ranked into waves of equal earliest start. A project with a
dependency cycle is drawn with the cycle edges marked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, opts.output)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.projectID, "project", "p", "", "project ID in the configured store")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or base path for several formats (- for stdout)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show durations, dates and float")
	cmd.Flags().BoolVar(&opts.topDown, "top-down", false, "rank top to bottom")

	return cmd
}

// parseFormats parses the --format flag. Without it the output file's
// extension picks the format, and svg is the default.
func parseFormats(s, output string) []string {
	if s != "" {
		return strings.Split(s, ",")
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); validFormats[ext] {
		return []string{ext}
	}
	return []string{formatSVG}
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png' or 'dot')", f)
		}
	}
	return nil
}

// outputPath derives the file for one format. With several formats, or no
// output at all, the extension is replaced; a single format keeps the
// explicit output path as given.
func outputPath(output, fallback, format string, multiple bool) string {
	switch {
	case output == "-":
		return ""
	case output == "":
		return strings.TrimSuffix(fallback, filepath.Ext(fallback)) + "." + format
	case multiple:
		ext := filepath.Ext(output)
		if validFormats[strings.TrimPrefix(ext, ".")] {
			output = strings.TrimSuffix(output, ext)
		}
		return output + "." + format
	default:
		return output
	}
}

func (c *CLI) runRender(ctx context.Context, args []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	b, err := c.openBackend(ctx, args, opts.projectID)
	if err != nil {
		return err
	}
	defer b.Close()

	runner, err := c.newRunner(b)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Orchestrate(ctx, b.projectID, pipeline.ModePreview)
	if err != nil {
		return err
	}
	g, _, err := dag.Build(res.Tasks)
	if err != nil {
		return err
	}
	logger.Infof("Loaded network: %d tasks, %d dependencies", g.NodeCount(), g.EdgeCount())
	if res.Blocked {
		logger.Warn("project has dependency cycles; drawing without a schedule", "cycles", len(res.Cycles))
	}

	dot := nodelink.ToDOT(g, res.Analysis, nodelink.Options{
		Detailed: opts.detailed,
		TopDown:  opts.topDown,
		Cycles:   res.Cycles,
	})

	fallback := b.projectID
	if len(args) == 1 {
		fallback = args[0]
	}
	for _, format := range opts.formats {
		data, err := renderDOT(ctx, dot, format)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		path := outputPath(opts.output, fallback, format, len(opts.formats) > 1)
		if err := writeOutput(path, data); err != nil {
			return err
		}
		if path != "" {
			printFile(path)
		}
	}
	return nil
}

func renderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, defaultPNGScale)
	default:
		return nodelink.RenderSVG(ctx, dot)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
