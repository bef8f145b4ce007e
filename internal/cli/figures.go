package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/figure"
	"github.com/renderlab/renderbench/pkg/observability"
)

// figureOpts holds the command-line flags for the figures command.
type figureOpts struct {
	suite      string   // suite file path
	scenes     []string // restrict to these scenes
	insetScale int      // integer upscale factor for inset crops
	noCache    bool     // disable error-metric memoization
}

// spinnerFigureHooks shows the image currently being processed in the
// spinner text, so long runs over a big output tree are not silent.
type spinnerFigureHooks struct {
	observability.NoopFigureHooks
	spinner *Spinner
}

func (h spinnerFigureHooks) OnImageStart(ctx context.Context, path string) {
	rel := filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
	h.spinner.SetMessage(fmt.Sprintf("Processing %s...", rel))
}

// figuresCommand creates the figures command: it tone-maps every float
// image under the output tree to PNG, cuts the configured insets, and
// writes relative-error reports against the reference renders.
func (c *CLI) figuresCommand() *cobra.Command {
	opts := figureOpts{suite: defaultSuite, insetScale: 1}

	cmd := &cobra.Command{
		Use:   "figures",
		Short: "Generate figure data from rendered output",
		Long: `Figures walks the suite's output tree and writes publication data next
to every rendered image: a tone-mapped PNG at the scene exposure, one
enlarged PNG per configured inset, and a relative-error report against
the matching reference render. Error computations are memoized, so
re-running over a large tree only recomputes what changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := config.Load(opts.suite)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			figCache, err := newCache(opts.noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer figCache.Close()

			spinner := newSpinnerWithContext(cmd.Context(), "Generating figure data...")
			spinner.Start()

			prevHooks := observability.Figure()
			observability.SetFigureHooks(spinnerFigureHooks{spinner: spinner})
			defer observability.SetFigureHooks(prevHooks)

			gen := figure.NewGenerator(suite, logger, figCache)
			gen.InsetScale = opts.insetScale
			gen.SceneFilter = opts.scenes

			summary, err := gen.Generate(cmd.Context())
			if err != nil {
				spinner.StopWithError(fmt.Sprintf("Figure generation failed: %v", err))
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Figure data for %d images", summary.Images))

			printFigureStats(summary.Images, summary.Files, summary.CacheHits)
			printNewline()
			printNextStep("Summarize results", fmt.Sprintf("%s report --suite %s", appName, opts.suite))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.suite, "suite", "s", opts.suite, "suite description file")
	cmd.Flags().StringSliceVar(&opts.scenes, "scene", nil, "only process these scenes (repeatable)")
	cmd.Flags().IntVar(&opts.insetScale, "inset-scale", opts.insetScale, "integer upscale factor for inset crops")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable error-metric memoization")

	return cmd
}
