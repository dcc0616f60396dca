package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/export"
	"github.com/vanderheijden86/jamgantt/pkg/ingest"
	"github.com/vanderheijden86/jamgantt/pkg/model"
	"github.com/vanderheijden86/jamgantt/pkg/scale"
)

type snapshotOptions struct {
	out      string
	format   string
	logScale bool
	band     int
	steps    int
	from     string
	feedMode string
	width    int
	height   int
	title    string
}

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a plan to a PNG, SVG or markdown file without starting the TUI",
		Long: `Render a plan to an image.

Without --from the recipe is advanced --steps times. With --from each
line of the file is decoded the same way as the live feed.`,
		Example: `  jg snapshot --steps 2 --out plan.svg
  jg snapshot --from feed.log --feed-mode structured --band 3 --log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "output path (default <snapshot dir>/jg-plan.<format>)")
	f.StringVar(&opts.format, "format", "", "png, svg or md (default from --out or config)")
	f.BoolVar(&opts.logScale, "log", false, "use a log10 frequency scale")
	f.IntVar(&opts.band, "band", 0, "zoom to band 1-5 (0 shows every band)")
	f.IntVar(&opts.steps, "steps", 2, "recipe steps to apply when --from is not set")
	f.StringVar(&opts.from, "from", "", "feed file to replay")
	f.StringVar(&opts.feedMode, "feed-mode", "step", "feed line format: step or structured")
	f.IntVar(&opts.width, "width", 0, "image width in pixels")
	f.IntVar(&opts.height, "height", 0, "image height in pixels")
	f.StringVar(&opts.title, "title", "Jamming plan", "title drawn in the header")
	return cmd
}

func runSnapshot(cmd *cobra.Command, root *rootOptions, opts *snapshotOptions) error {
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	if opts.band < 0 || opts.band > model.BandCount() {
		return fmt.Errorf("--band %d outside 0-%d", opts.band, model.BandCount())
	}

	recipe, err := cfg.Recipe()
	if err != nil {
		return err
	}

	mode := scale.Linear
	if opts.logScale || cfg.UI.LogScale {
		mode = scale.Log10
	}
	session := chart.NewSession(nil,
		chart.WithLogger(quietLogger(cmd.ErrOrStderr(), root.logLevel)),
		chart.WithRecipe(recipe),
		chart.WithMode(mode),
	)

	if opts.from != "" {
		if err := replayFeed(session, opts.from, opts.feedMode, recipe.Len(), cmd.ErrOrStderr()); err != nil {
			return err
		}
	} else {
		for i := 0; i < opts.steps; i++ {
			session.Apply(ingest.Token{Step: uint(i) % recipe.Len()})
		}
	}

	// The first frame applies the scale mode; band zoom comes after it.
	frame := session.Frame(chart.FrameInput{})
	if opts.band > 0 {
		if err := session.SelectBand(opts.band - 1); err != nil {
			return err
		}
		frame = session.Frame(chart.FrameInput{})
	}

	format := opts.format
	if format == "" && opts.out == "" {
		format = cfg.Snapshot.Format
	}
	out := opts.out
	if out == "" {
		ext := format
		if ext == "" {
			ext = "png"
		}
		out = filepath.Join(cfg.SnapshotDir(), "jg-plan."+ext)
	}

	path, err := export.SaveSnapshot(export.SnapshotOptions{
		Path:   out,
		Format: format,
		Title:  opts.title,
		Frame:  frame,
		Width:  opts.width,
		Height: opts.height,
	})
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot saved to %s (%d tasks)\n", path, frame.TaskCount)
	return nil
}

// replayFeed applies every line of path to session through the live feed's
// decoder. Lines that do not decode are reported and skipped.
func replayFeed(session *chart.Session, path, feedMode string, recipeLen uint, warn io.Writer) error {
	mode, err := ingest.ParseFeedMode(feedMode)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening feed: %w", err)
	}
	defer f.Close()

	dec := ingest.NewLineDecoder(mode, recipeLen)
	return ingest.ReplayLines(f, dec, func(lineNo int, tok ingest.Token, err error) {
		if err != nil {
			fmt.Fprintf(warn, "Warning: %s:%d: %v\n", path, lineNo, err)
			return
		}
		session.Apply(tok)
	})
}
