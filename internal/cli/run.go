package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/render"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	suite    string   // suite file path
	refresh  bool     // re-render reference images even when present
	scenes   []string // restrict to these scenes
	variants []string // restrict to these variants
}

// runCommand creates the run command, the test driver: it renders every
// selected scene with every integrator variant, the direct-illumination
// counterparts, the path-tracer baselines, and the references, timing each
// configuration.
func (c *CLI) runCommand() *cobra.Command {
	opts := runOpts{suite: defaultSuite}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark suite against the renderer",
		Long: `Run drives the renderer binary across the suite's scene and variant
matrix. For each scene it renders the reference images (skipped when they
already exist), every integrator variant with and without indirect
illumination, and the path-tracer baselines. Every configuration is
rendered the configured number of times and wall-clock timings are
journaled next to the images.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := config.Load(opts.suite)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			if suite.Repeats == 1 {
				printWarning("repeats is 1, timing stddev will be zero")
			}

			prog := newProgress(logger)
			runner := render.NewRunner(suite, logger)
			runner.Refresh = opts.refresh
			runner.SceneFilter = opts.scenes
			runner.VariantFilter = opts.variants

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d configurations", len(result.Timings)))

			printSuccess("Suite complete")
			printKeyValue("run", result.RunID)
			printKeyValue("images", fmt.Sprintf("%d", len(result.Images)))
			printKeyValue("output", suite.OutputDir)
			printNewline()
			printNextStep("Generate figure data", fmt.Sprintf("%s figures --suite %s", appName, opts.suite))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.suite, "suite", "s", opts.suite, "suite description file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render reference images even if they exist")
	cmd.Flags().StringSliceVar(&opts.scenes, "scene", nil, "only run these scenes (repeatable)")
	cmd.Flags().StringSliceVar(&opts.variants, "variant", nil, "only run these variants (repeatable)")

	return cmd
}
