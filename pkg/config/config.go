// Package config loads and validates the benchmark suite description.
//
// A suite is a TOML file naming the renderer executable, the scene
// directories, the integrator and sampler directive strings to substitute
// into scene templates, the integrator variants under test, and the
// per-scene figure data (exposure, inset rectangles). Keeping the per-scene
// pixel offsets and exposures here, rather than in code, is what lets one
// binary drive any suite.
package config

import (
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/renderlab/renderbench/pkg/errors"
	"github.com/renderlab/renderbench/pkg/imgio"
)

// Well-known integrator slots. The driver looks these up by name in the
// [integrators] table.
const (
	IntegratorExperiment = "experiment" // full-transport integrator under test
	IntegratorDirect     = "direct"     // direct-illumination-only counterpart
	IntegratorPath       = "path"       // path-tracer baseline
	IntegratorPathDirect = "path-direct"
	IntegratorReference  = "reference" // high-sample-count reference render
	// IntegratorReferenceDirect is optional; without it no direct-only
	// reference is rendered and direct-only error reports are skipped.
	IntegratorReferenceDirect = "reference-direct"
)

// Well-known sampler slots in the [samplers] table.
const (
	SamplerExperiment = "experiment" // sample budget used by all variants
	SamplerDouble     = "double"     // doubled budget for equal-time baselines
	SamplerReference  = "reference"  // reference sample budget
)

// Suite is the top-level benchmark description.
type Suite struct {
	Renderer  string `toml:"renderer"`
	ScenesDir string `toml:"scenes-dir"`
	OutputDir string `toml:"output-dir"`
	Repeats   int    `toml:"repeats"`

	Integrators map[string]string `toml:"integrators"`
	Samplers    map[string]string `toml:"samplers"`
	Variants    map[string]string `toml:"variants"`
	Scenes      map[string]Scene  `toml:"scenes"`
}

// Scene describes one test scene: where its template lives and how its
// renders are presented in figures.
type Scene struct {
	Path     string  `toml:"path"`     // directory under scenes-dir
	Template string  `toml:"template"` // template file within Path
	Exposure float64 `toml:"exposure"` // stops applied when tone mapping
	Insets   []Inset `toml:"insets"`
}

// Inset is a crop rectangle shown enlarged next to the full image.
// Exposure, when set, overrides the scene exposure for this inset only.
type Inset struct {
	Left     int      `toml:"left"`
	Top      int      `toml:"top"`
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Exposure *float64 `toml:"exposure"`
}

// Rect returns the inset's crop rectangle.
func (i Inset) Rect() imgio.Rect {
	return imgio.Rect{Left: i.Left, Top: i.Top, Width: i.Width, Height: i.Height}
}

// Stops returns the exposure to use for this inset, falling back to the
// scene exposure when none is configured.
func (i Inset) Stops(scene Scene) float64 {
	if i.Exposure != nil {
		return *i.Exposure
	}
	return scene.Exposure
}

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "suite %s", path)
	}
	if err != nil {
		return nil, err
	}

	var s Suite
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSuite, err, "parsing %s", path)
	}

	s.setDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setDefaults fills in unset optional fields.
func (s *Suite) setDefaults() {
	if s.Repeats == 0 {
		s.Repeats = 1
	}
	if s.OutputDir == "" {
		s.OutputDir = "test-output"
	}
}

// Validate checks the suite for structural problems. It does not touch the
// filesystem; missing renderer binaries or scene directories surface when
// the driver runs.
func (s *Suite) Validate() error {
	if s.Renderer == "" {
		return errors.New(errors.ErrCodeInvalidSuite, "renderer executable not set")
	}
	if s.ScenesDir == "" {
		return errors.New(errors.ErrCodeInvalidSuite, "scenes-dir not set")
	}
	if s.Repeats < 1 {
		return errors.New(errors.ErrCodeInvalidSuite, "repeats must be at least 1, got %d", s.Repeats)
	}
	if len(s.Variants) == 0 {
		return errors.New(errors.ErrCodeInvalidSuite, "no variants configured")
	}
	if len(s.Scenes) == 0 {
		return errors.New(errors.ErrCodeInvalidSuite, "no scenes configured")
	}

	for _, slot := range []string{
		IntegratorExperiment, IntegratorDirect,
		IntegratorPath, IntegratorPathDirect,
		IntegratorReference,
	} {
		if s.Integrators[slot] == "" {
			return errors.New(errors.ErrCodeInvalidSuite, "integrators table missing %q", slot)
		}
	}
	for _, slot := range []string{SamplerExperiment, SamplerDouble, SamplerReference} {
		if s.Samplers[slot] == "" {
			return errors.New(errors.ErrCodeInvalidSuite, "samplers table missing %q", slot)
		}
	}

	for name := range s.Variants {
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSuite, err, "variant %q", name)
		}
	}

	for name, sc := range s.Scenes {
		if err := errors.ValidateName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene %q", name)
		}
		if sc.Path == "" {
			return errors.New(errors.ErrCodeInvalidScene, "scene %q: path not set", name)
		}
		if sc.Template == "" {
			return errors.New(errors.ErrCodeInvalidScene, "scene %q: template not set", name)
		}
		for i, in := range sc.Insets {
			rc := in.Rect()
			if rc.Left < 0 || rc.Top < 0 || rc.Empty() {
				return errors.New(errors.ErrCodeInvalidInset,
					"scene %q inset %d: bad rectangle %dx%d+%d+%d",
					name, i+1, rc.Width, rc.Height, rc.Left, rc.Top)
			}
		}
	}

	return nil
}

// SceneNames returns the scene names in deterministic order.
func (s *Suite) SceneNames() []string {
	names := make([]string, 0, len(s.Scenes))
	for name := range s.Scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VariantNames returns the variant names in deterministic order.
func (s *Suite) VariantNames() []string {
	names := make([]string, 0, len(s.Variants))
	for name := range s.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
