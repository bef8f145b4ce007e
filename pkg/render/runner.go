// Package render drives the renderer binary across the suite's scene ×
// variant matrix and records benchmark timings.
//
// The driver is strictly sequential: one renderer process at a time, each
// awaited to completion, repeated a fixed number of times for timing. The
// only concurrency is cancellation through the command context, which
// kills the renderer process and aborts the run.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/errors"
	"github.com/renderlab/renderbench/pkg/imgio"
	"github.com/renderlab/renderbench/pkg/metrics"
	"github.com/renderlab/renderbench/pkg/observability"
	"github.com/renderlab/renderbench/pkg/scene"
)

// Runner executes a benchmark suite.
//
// The Runner is stateless between runs: every Run composes scene files,
// invokes the renderer, and journals timings from scratch. It is not safe
// for concurrent use, matching the one-renderer-at-a-time execution model.
type Runner struct {
	Suite  *config.Suite
	Logger *log.Logger

	// Refresh forces reference images to be re-rendered even when they
	// already exist.
	Refresh bool

	// SceneFilter and VariantFilter restrict the run to a subset of the
	// suite. Empty means everything.
	SceneFilter   []string
	VariantFilter []string

	renderer string // absolute renderer path, resolved at Run
}

// NewRunner creates a runner for the given suite.
func NewRunner(s *config.Suite, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Suite: s, Logger: logger}
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	Images   []string // float images produced, in render order
	Timings  []Record
	Duration time.Duration
}

// Record is one timed renderer configuration.
type Record struct {
	Scene   string         `json:"scene"`
	Config  string         `json:"config"` // variant name or baseline label
	Outfile string         `json:"outfile"`
	Timing  metrics.Timing `json:"timing"`
}

// Run executes the suite: for every selected scene it renders the
// references (unless present), every integrator variant with and without
// indirect illumination, and the path-tracer baselines. Timings are
// journaled into each working directory as it completes.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	renderer, err := filepath.Abs(r.Suite.Renderer)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(renderer); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeRendererMissing, "renderer %s does not exist", renderer)
	}
	r.renderer = renderer

	result := &Result{RunID: uuid.NewString()}
	r.Logger.Info("starting suite run",
		"run_id", result.RunID,
		"renderer", renderer,
		"repeats", r.Suite.Repeats)

	for _, name := range filterNames(r.Suite.SceneNames(), r.SceneFilter) {
		sc := r.Suite.Scenes[name]

		sceneStart := time.Now()
		observability.Run().OnSceneStart(ctx, name)

		images, records, err := r.runScene(ctx, name, sc, result.RunID)
		observability.Run().OnSceneComplete(ctx, name, len(images), time.Since(sceneStart), err)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", name, err)
		}

		result.Images = append(result.Images, images...)
		result.Timings = append(result.Timings, records...)
	}

	result.Duration = time.Since(start)
	r.Logger.Info("suite run complete",
		"images", len(result.Images),
		"configs", len(result.Timings),
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// runScene renders references, variants, and baselines for one scene.
func (r *Runner) runScene(ctx context.Context, name string, sc config.Scene, runID string) ([]string, []Record, error) {
	logger := r.Logger.With("scene", name)
	logger.Info("testing scene")

	templatePath := filepath.Join(r.Suite.ScenesDir, sc.Path, sc.Template)
	tpl, err := scene.LoadTemplate(templatePath)
	if err != nil {
		return nil, nil, err
	}
	sceneFile, err := filepath.Abs(scene.SceneFile(templatePath))
	if err != nil {
		return nil, nil, err
	}

	sceneOut := filepath.Join(r.Suite.OutputDir, name)

	var images []string
	var records []Record

	refRecords, err := r.renderReferences(ctx, name, tpl, sceneFile, sceneOut)
	if err != nil {
		return nil, nil, err
	}
	records = append(records, refRecords...)

	suite := r.Suite
	for _, variant := range filterNames(suite.VariantNames(), r.VariantFilter) {
		params := suite.Variants[variant]
		workDir := filepath.Join(sceneOut, variant)
		if err := resetWorkDir(workDir); err != nil {
			return nil, nil, err
		}

		journal := newJournal(runID, name, variant, r.renderer, suite.Repeats)

		configs := []renderConfig{
			{
				label:      variant,
				integrator: suite.Integrators[config.IntegratorExperiment] + params,
				sampler:    suite.Samplers[config.SamplerExperiment],
				outfile:    "img.exr",
			},
			{
				label:      variant + " (direct illumination only)",
				integrator: suite.Integrators[config.IntegratorDirect] + params,
				sampler:    suite.Samplers[config.SamplerExperiment],
				outfile:    "direct-only.exr",
			},
		}
		recs, err := r.renderAll(ctx, logger, tpl, sceneFile, workDir, name, variant, configs, journal)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, recs...)

		found, err := floatImages(workDir)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, found...)
	}

	baselineRecs, baselineImages, err := r.runBaselines(ctx, logger, tpl, sceneFile, sceneOut, name, runID)
	if err != nil {
		return nil, nil, err
	}
	records = append(records, baselineRecs...)
	images = append(images, baselineImages...)

	return images, records, nil
}

// runBaselines renders the path-tracer comparisons: an equal-iteration run
// with the experiment sample budget and an equal-sample run with double the
// budget, each with a direct-only counterpart.
func (r *Runner) runBaselines(ctx context.Context, logger *log.Logger, tpl *scene.Template, sceneFile, sceneOut, sceneName, runID string) ([]Record, []string, error) {
	suite := r.Suite
	workDir := filepath.Join(sceneOut, config.BaselineDir)
	if err := resetWorkDir(workDir); err != nil {
		return nil, nil, err
	}

	journal := newJournal(runID, sceneName, config.BaselineDir, r.renderer, suite.Repeats)

	configs := []renderConfig{
		{
			label:      "path tracer (double)",
			integrator: suite.Integrators[config.IntegratorPath],
			sampler:    suite.Samplers[config.SamplerDouble],
			outfile:    "path-double.exr",
		},
		{
			label:      "path tracer (double, direct illumination only)",
			integrator: suite.Integrators[config.IntegratorPathDirect],
			sampler:    suite.Samplers[config.SamplerDouble],
			outfile:    "path-double-direct-only.exr",
		},
		{
			label:      "path tracer (same)",
			integrator: suite.Integrators[config.IntegratorPath],
			sampler:    suite.Samplers[config.SamplerExperiment],
			outfile:    "path-same.exr",
		},
		{
			label:      "path tracer (same, direct illumination only)",
			integrator: suite.Integrators[config.IntegratorPathDirect],
			sampler:    suite.Samplers[config.SamplerExperiment],
			outfile:    "path-same-direct-only.exr",
		},
	}

	records, err := r.renderAll(ctx, logger, tpl, sceneFile, workDir, sceneName, config.BaselineDir, configs, journal)
	if err != nil {
		return nil, nil, err
	}

	images, err := floatImages(workDir)
	if err != nil {
		return nil, nil, err
	}
	return records, images, nil
}

// renderReferences renders the reference images for a scene into its
// output directory, skipping any that already exist unless Refresh is set.
// The direct-illumination reference is only rendered when the suite
// configures a reference-direct integrator.
func (r *Runner) renderReferences(ctx context.Context, sceneName string, tpl *scene.Template, sceneFile, sceneOut string) ([]Record, error) {
	suite := r.Suite
	logger := r.Logger.With("scene", sceneName)

	refs := []renderConfig{
		{
			label:      "reference",
			integrator: suite.Integrators[config.IntegratorReference],
			sampler:    suite.Samplers[config.SamplerReference],
			outfile:    config.RefGlobalImage,
		},
	}
	if directRef := suite.Integrators[config.IntegratorReferenceDirect]; directRef != "" {
		refs = append(refs, renderConfig{
			label:      "reference (direct illumination only)",
			integrator: directRef,
			sampler:    suite.Samplers[config.SamplerReference],
			outfile:    config.RefDirectImage,
		})
	}

	if err := os.MkdirAll(sceneOut, 0755); err != nil {
		return nil, err
	}

	var records []Record
	for _, cfg := range refs {
		path := filepath.Join(sceneOut, cfg.outfile)
		if _, err := os.Stat(path); err == nil && !r.Refresh {
			logger.Debug("reference already rendered", "outfile", cfg.outfile)
			continue
		}

		rec, err := r.renderOne(ctx, logger, tpl, sceneFile, sceneOut, sceneName, cfg)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// renderAll runs a list of configurations in one working directory and
// writes the timing journal afterwards.
func (r *Runner) renderAll(ctx context.Context, logger *log.Logger, tpl *scene.Template, sceneFile, workDir, sceneName, configName string, configs []renderConfig, journal *Journal) ([]Record, error) {
	var records []Record
	for _, cfg := range configs {
		rec, err := r.renderOne(ctx, logger, tpl, sceneFile, workDir, sceneName, cfg)
		if err != nil {
			return nil, err
		}
		rec.Config = configName
		records = append(records, rec)
		journal.add(cfg.label, cfg.outfile, rec.Timing)
	}

	if err := journal.write(workDir); err != nil {
		return nil, err
	}
	return records, nil
}

// renderConfig is one composed scene configuration to render.
type renderConfig struct {
	label      string // human-readable name used in logs and journals
	integrator string // full integrator directive
	sampler    string // full sampler directive
	outfile    string
}

// renderOne composes the scene file for cfg and invokes the renderer the
// configured number of times, timing each run.
func (r *Runner) renderOne(ctx context.Context, logger *log.Logger, tpl *scene.Template, sceneFile, workDir, sceneName string, cfg renderConfig) (Record, error) {
	composed := tpl.SetIntegrator(cfg.integrator).SetSampler(cfg.sampler)
	if err := composed.WriteFile(sceneFile); err != nil {
		return Record{}, err
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return Record{}, err
	}

	observability.Run().OnRenderStart(ctx, sceneName, cfg.label, cfg.outfile)
	start := time.Now()

	samples := make([]time.Duration, 0, r.Suite.Repeats)
	for i := 0; i < r.Suite.Repeats; i++ {
		elapsed, err := r.invoke(ctx, sceneFile, workDir, cfg.outfile)
		if err != nil {
			observability.Run().OnRenderComplete(ctx, sceneName, cfg.label, cfg.outfile, time.Since(start), err)
			return Record{}, err
		}
		samples = append(samples, elapsed)
	}

	timing, err := metrics.Summarize(samples)
	if err != nil {
		return Record{}, err
	}
	observability.Run().OnRenderComplete(ctx, sceneName, cfg.label, cfg.outfile, time.Since(start), nil)

	logger.Info(fmt.Sprintf("%s took %.2f s (± %.2f s)", cfg.label, timing.Mean, timing.Stddev),
		"outfile", cfg.outfile)

	return Record{Scene: sceneName, Config: cfg.label, Outfile: cfg.outfile, Timing: timing}, nil
}

// resetWorkDir creates the working directory and deletes float images left
// by previous runs, so stale renders can never leak into figures.
func resetWorkDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && imgio.IsFloatImage(e.Name()) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// floatImages lists the float images in a directory, sorted by name.
func floatImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, e := range entries {
		if !e.IsDir() && imgio.IsFloatImage(e.Name()) {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	return images, nil
}

// filterNames filters names down to those in keep; an empty keep selects all.
func filterNames(names, keep []string) []string {
	if len(keep) == 0 {
		return names
	}
	allowed := make(map[string]bool, len(keep))
	for _, k := range keep {
		allowed[k] = true
	}
	var out []string
	for _, n := range names {
		if allowed[n] {
			out = append(out, n)
		}
	}
	return out
}
