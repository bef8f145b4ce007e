// Package figure turns the float images left by a benchmark run into
// publication data: tone-mapped PNGs of every render, enlarged inset crops,
// and per-image relative-error reports against the reference renders.
//
// The package walks the suite's output tree rather than taking an image
// list, so it picks up whatever the driver produced, including renders from
// partial or repeated runs.
package figure

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	"github.com/renderlab/renderbench/pkg/cache"
	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/errors"
	"github.com/renderlab/renderbench/pkg/imgio"
	"github.com/renderlab/renderbench/pkg/metrics"
	"github.com/renderlab/renderbench/pkg/observability"
	"github.com/renderlab/renderbench/pkg/tonemap"
)

// Generator produces figure data for one suite's output tree.
type Generator struct {
	Suite  *config.Suite
	Logger *log.Logger
	Cache  cache.Cache

	// InsetScale is the integer factor inset crops are enlarged by before
	// writing. 1 (or 0) writes them at native resolution.
	InsetScale int

	// SceneFilter restricts generation to a subset of scenes. Empty means
	// everything.
	SceneFilter []string

	keyer cache.Keyer
	refs  *referenceSet
}

// NewGenerator creates a generator for the given suite. A nil cache
// disables memoization.
func NewGenerator(s *config.Suite, logger *log.Logger, c cache.Cache) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Generator{
		Suite:  s,
		Logger: logger,
		Cache:  c,
		keyer:  cache.NewDefaultKeyer(),
	}
}

// Summary reports what a Generate call produced.
type Summary struct {
	Images    int // float images processed
	Files     int // PNG and error files written
	CacheHits int
	Duration  time.Duration
}

// Generate walks the output tree and writes figure data next to every
// float image found: a tone-mapped PNG, one enlarged PNG per configured
// inset, and a relative-error report against the matching reference.
func (g *Generator) Generate(ctx context.Context) (*Summary, error) {
	start := time.Now()

	images, err := g.discover()
	if err != nil {
		return nil, err
	}
	g.refs = newReferenceSet(g.Suite)

	summary := &Summary{}
	for _, path := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		imgStart := time.Now()
		observability.Figure().OnImageStart(ctx, path)

		files, hits, err := g.processImage(ctx, path)
		observability.Figure().OnImageComplete(ctx, path, files, time.Since(imgStart), err)
		if err != nil {
			return nil, fmt.Errorf("figure data for %s: %w", path, err)
		}

		summary.Images++
		summary.Files += files
		summary.CacheHits += hits
	}

	summary.Duration = time.Since(start)
	g.Logger.Info("figure data complete",
		"images", summary.Images,
		"files", summary.Files,
		"cache_hits", summary.CacheHits,
		"duration", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// discover lists the float images under the output tree in deterministic
// order, excluding diagnostic factor images that have no reference.
func (g *Generator) discover() ([]string, error) {
	var images []string
	err := filepath.WalkDir(g.Suite.OutputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imgio.IsFloatImage(path) {
			return nil
		}
		if config.IsFactorImage(filepath.Base(path)) {
			return nil
		}
		name, err := g.sceneFor(path)
		if err != nil {
			return err
		}
		if !g.selected(name) {
			return nil
		}
		images = append(images, path)
		return nil
	})
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err,
			"output directory %s (run the suite first)", g.Suite.OutputDir)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(images)
	return images, nil
}

// processImage writes the PNGs and the error report for one float image.
// Reference images themselves get PNGs and insets but no error report
// against the global reference would be meaningful for the direct one, so
// references are compared like any other render: a reference compared to
// itself reports zero, which doubles as a sanity check of the output tree.
func (g *Generator) processImage(ctx context.Context, path string) (files, hits int, err error) {
	sceneName, err := g.sceneFor(path)
	if err != nil {
		return 0, 0, err
	}
	sc := g.Suite.Scenes[sceneName]

	img, err := imgio.Decode(path)
	if err != nil {
		return 0, 0, err
	}

	refPath, err := g.refs.pathFor(path, sceneName)
	if err != nil {
		return 0, 0, err
	}
	ref, err := g.refs.load(refPath)
	if err != nil {
		return 0, 0, err
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))

	// Full image PNG at the scene exposure.
	if err := imgio.WritePNG(base+".png", tonemap.Map(img, sc.Exposure)); err != nil {
		return files, hits, err
	}
	files++

	full, hit, err := g.relativeError(ctx, path, refPath, img, ref, nil)
	if err != nil {
		return files, hits, err
	}
	if hit {
		hits++
	}
	insetErrors := make([]float64, 0, len(sc.Insets))

	for i, inset := range sc.Insets {
		rc := inset.Rect()
		crop, err := img.Crop(rc)
		if err != nil {
			return files, hits, fmt.Errorf("inset %d: %w", i+1, err)
		}

		out := upscale(tonemap.Map(crop, inset.Stops(sc)), g.InsetScale)
		if err := imgio.WritePNG(fmt.Sprintf("%s-inset%d.png", base, i+1), out); err != nil {
			return files, hits, err
		}
		files++

		refCrop, err := ref.Crop(rc)
		if err != nil {
			return files, hits, fmt.Errorf("inset %d: %w", i+1, err)
		}
		e, hit, err := g.relativeError(ctx, path, refPath, crop, refCrop, &rc)
		if err != nil {
			return files, hits, err
		}
		if hit {
			hits++
		}
		insetErrors = append(insetErrors, e)
	}

	if err := writeErrorReport(base+config.ErrorFileSuffix, full, insetErrors); err != nil {
		return files, hits, err
	}
	files++

	g.Logger.Debug("figure data written",
		"image", filepath.Base(path),
		"scene", sceneName,
		"error", metrics.RoundSig(full, 3))
	return files, hits, nil
}

// relativeError computes the error metric between two decoded images,
// memoized by the content signatures of the two files and the compared
// region. rect is nil for the whole-image comparison.
func (g *Generator) relativeError(ctx context.Context, imgPath, refPath string, img, ref *imgio.Image, rect *imgio.Rect) (float64, bool, error) {
	imgSig, err := cache.FileSignature(imgPath)
	if err != nil {
		return 0, false, err
	}
	refSig, err := cache.FileSignature(refPath)
	if err != nil {
		return 0, false, err
	}

	opts := cache.MetricKeyOpts{Full: rect == nil}
	if rect != nil {
		opts.Left, opts.Top, opts.Width, opts.Height = rect.Left, rect.Top, rect.Width, rect.Height
	}
	key := g.keyer.MetricKey(imgSig, refSig, opts)

	if data, ok, err := g.Cache.Get(ctx, key); err == nil && ok {
		if v, err := strconv.ParseFloat(string(data), 64); err == nil {
			observability.Cache().OnCacheHit(ctx, "metric")
			return v, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "metric")

	v, err := metrics.RelativeError(img, ref)
	if err != nil {
		return 0, false, err
	}

	data := []byte(strconv.FormatFloat(v, 'g', -1, 64))
	if err := g.Cache.Set(ctx, key, data, cache.TTLMetric); err == nil {
		observability.Cache().OnCacheSet(ctx, "metric", len(data))
	}
	return v, false, nil
}

// sceneFor finds which suite scene an output path belongs to by matching
// scene names against the path, longest name first so a scene named
// "kitchen2" is never claimed by "kitchen".
func (g *Generator) sceneFor(path string) (string, error) {
	names := g.Suite.SceneNames()
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		if strings.Contains(path, name) {
			return name, nil
		}
	}
	return "", errors.New(errors.ErrCodeSceneNotFound,
		"no suite scene matches output image %s", path)
}

func (g *Generator) selected(scene string) bool {
	if len(g.SceneFilter) == 0 {
		return true
	}
	for _, s := range g.SceneFilter {
		if s == scene {
			return true
		}
	}
	return false
}

// writeErrorReport writes the relative-error values for one image, rounded
// to three significant figures.
func writeErrorReport(path string, full float64, insets []float64) error {
	var b strings.Builder
	b.WriteString("relative errors (i - r)^2 / (r^2):\n")
	fmt.Fprintf(&b, "full image: %g\n", metrics.RoundSig(full, 3))
	for i, e := range insets {
		fmt.Fprintf(&b, "inset %d: %g\n", i+1, metrics.RoundSig(e, 3))
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// upscale enlarges an 8-bit image by an integer factor using nearest
// neighbor, keeping inset pixels blocky instead of smeared.
func upscale(src *image.NRGBA, factor int) image.Image {
	if factor <= 1 {
		return src
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}
