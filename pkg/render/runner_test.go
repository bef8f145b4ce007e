package render

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/errors"
	"github.com/renderlab/renderbench/pkg/metrics"
)

const sceneText = `LookAt 3 4 1.5  .5 .5 0  0 0 1
Integrator "path" "integer maxdepth" 5
Sampler "halton" "integer pixelsamples" 16
WorldBegin
`

// fakeRenderer writes a shell script that creates its --outfile argument
// after an optional sleep, standing in for the real renderer binary.
func fakeRenderer(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "renderer.sh")
	script := "#!/bin/sh\ntouch \"$3\"\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSuite(t *testing.T, renderer string) *config.Suite {
	t.Helper()
	scenesDir := t.TempDir()
	sceneDir := filepath.Join(scenesDir, "cornell")
	if err := os.MkdirAll(sceneDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sceneDir, "scene.pbrt"), []byte(sceneText), 0644); err != nil {
		t.Fatal(err)
	}

	return &config.Suite{
		Renderer:  renderer,
		ScenesDir: scenesDir,
		OutputDir: filepath.Join(t.TempDir(), "out"),
		Repeats:   2,
		Integrators: map[string]string{
			config.IntegratorExperiment:      `Integrator "guided"`,
			config.IntegratorDirect:          `Integrator "guided" "integer maxdepth" 1`,
			config.IntegratorPath:            `Integrator "path"`,
			config.IntegratorPathDirect:      `Integrator "path" "integer maxdepth" 1`,
			config.IntegratorReference:       `Integrator "bdpt"`,
			config.IntegratorReferenceDirect: `Integrator "directlighting"`,
		},
		Samplers: map[string]string{
			config.SamplerExperiment: `Sampler "halton" "integer pixelsamples" 32`,
			config.SamplerDouble:     `Sampler "halton" "integer pixelsamples" 64`,
			config.SamplerReference:  `Sampler "halton" "integer pixelsamples" 1024`,
		},
		Variants: map[string]string{
			"balance": ` "string strategy" "balance"`,
			"power":   ` "string strategy" "power"`,
		},
		Scenes: map[string]config.Scene{
			"cornell": {Path: "cornell", Template: "scene.pbrt"},
		},
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRunProducesOutputTree(t *testing.T) {
	dir := t.TempDir()
	suite := testSuite(t, fakeRenderer(t, dir))

	r := NewRunner(suite, quietLogger())
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}

	sceneOut := filepath.Join(suite.OutputDir, "cornell")
	want := []string{
		filepath.Join(sceneOut, config.RefGlobalImage),
		filepath.Join(sceneOut, config.RefDirectImage),
		filepath.Join(sceneOut, "balance", "img.exr"),
		filepath.Join(sceneOut, "balance", "direct-only.exr"),
		filepath.Join(sceneOut, "balance", JournalFile),
		filepath.Join(sceneOut, "power", "img.exr"),
		filepath.Join(sceneOut, "power", "direct-only.exr"),
		filepath.Join(sceneOut, "path", "path-double.exr"),
		filepath.Join(sceneOut, "path", "path-double-direct-only.exr"),
		filepath.Join(sceneOut, "path", "path-same.exr"),
		filepath.Join(sceneOut, "path", "path-same-direct-only.exr"),
		filepath.Join(sceneOut, "path", JournalFile),
	}
	for _, path := range want {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing output %s: %v", path, err)
		}
	}

	// 2 references + 2 variants x 2 configs + 4 baselines.
	if got := len(result.Timings); got != 10 {
		t.Errorf("expected 10 timing records, got %d", got)
	}
	// Everything except references and journals.
	if got := len(result.Images); got != 8 {
		t.Errorf("expected 8 images, got %d", got)
	}
}

func TestRunComposesSceneFile(t *testing.T) {
	dir := t.TempDir()
	suite := testSuite(t, fakeRenderer(t, dir))
	suite.Variants = map[string]string{"balance": ` "string strategy" "balance"`}

	r := NewRunner(suite, quietLogger())
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The last composed configuration is the direct-only path baseline.
	composed := filepath.Join(suite.ScenesDir, "cornell", "scene-run.pbrt")
	data, err := os.ReadFile(composed)
	if err != nil {
		t.Fatalf("reading composed scene: %v", err)
	}
	text := string(data)
	if !containsLine(text, `Integrator "path" "integer maxdepth" 1`) {
		t.Errorf("composed scene missing baseline integrator:\n%s", text)
	}
	if !containsLine(text, `Sampler "halton" "integer pixelsamples" 32`) {
		t.Errorf("composed scene missing experiment sampler:\n%s", text)
	}

	// The template itself stays untouched.
	tpl, err := os.ReadFile(filepath.Join(suite.ScenesDir, "cornell", "scene.pbrt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(tpl) != sceneText {
		t.Error("template was modified by the run")
	}
}

func containsLine(text, line string) bool {
	for _, l := range splitLines(text) {
		if l == line {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}

func TestRunSkipsExistingReferences(t *testing.T) {
	dir := t.TempDir()
	suite := testSuite(t, fakeRenderer(t, dir))

	r := NewRunner(suite, quietLogger())
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	ref := filepath.Join(suite.OutputDir, "cornell", config.RefGlobalImage)
	before, err := os.Stat(ref)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	after, err := os.Stat(ref)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("reference was re-rendered without --refresh")
	}
	// No reference records on the second run.
	if got := len(result.Timings); got != 8 {
		t.Errorf("expected 8 timing records on rerun, got %d", got)
	}

	r.Refresh = true
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("refresh Run: %v", err)
	}
	refreshed, err := os.Stat(ref)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.ModTime().Equal(before.ModTime()) {
		t.Error("reference not re-rendered with refresh set")
	}
}

func TestRunMissingRenderer(t *testing.T) {
	suite := testSuite(t, filepath.Join(t.TempDir(), "no-such-renderer"))

	r := NewRunner(suite, quietLogger())
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing renderer")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeRendererMissing {
		t.Errorf("expected RENDERER_MISSING, got %s", code)
	}
}

func TestRunRendererFailure(t *testing.T) {
	dir := t.TempDir()
	renderer := filepath.Join(dir, "renderer.sh")
	script := "#!/bin/sh\necho 'scene parse error' >&2\nexit 1\n"
	if err := os.WriteFile(renderer, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	suite := testSuite(t, renderer)

	r := NewRunner(suite, quietLogger())
	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for failing renderer")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeRendererFailed {
		t.Errorf("expected RENDERER_FAILED, got %s", code)
	}
}

func TestRunSceneFilter(t *testing.T) {
	dir := t.TempDir()
	suite := testSuite(t, fakeRenderer(t, dir))

	r := NewRunner(suite, quietLogger())
	r.SceneFilter = []string{"no-such-scene"}
	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Images) != 0 || len(result.Timings) != 0 {
		t.Errorf("expected empty result for non-matching filter, got %d images", len(result.Images))
	}
}

func TestResetWorkDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"img.exr", "old.pfm", "keep.png", JournalFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := resetWorkDir(dir); err != nil {
		t.Fatalf("resetWorkDir: %v", err)
	}

	for _, name := range []string{"img.exr", "old.pfm"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("stale float image %s not removed", name)
		}
	}
	for _, name := range []string{"keep.png", JournalFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("non-float file %s removed: %v", name, err)
		}
	}
}

func TestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()

	j := newJournal("run-1", "cornell", "balance", "/usr/bin/pbrt", 3)
	j.add("balance", "img.exr", metrics.Timing{Samples: []float64{1.4, 1.5, 1.6}, Mean: 1.5, Stddev: 0.1, Min: 1.4, Max: 1.6})
	j.add("balance (direct illumination only)", "direct-only.exr", metrics.Timing{Samples: []float64{0.5, 0.5, 0.5}, Mean: 0.5})

	if err := j.write(dir); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadJournal(filepath.Join(dir, JournalFile))
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if got.RunID != "run-1" || got.Scene != "cornell" || got.Config != "balance" || got.Repeats != 3 {
		t.Errorf("journal header mismatch: %+v", got)
	}
	if !reflect.DeepEqual(got.Entries, j.Entries) {
		t.Errorf("entries mismatch:\n got %+v\nwant %+v", got.Entries, j.Entries)
	}
}

func TestFilterNames(t *testing.T) {
	names := []string{"a", "b", "c"}

	tests := []struct {
		name string
		keep []string
		want []string
	}{
		{"empty keeps all", nil, []string{"a", "b", "c"}},
		{"subset", []string{"c", "a"}, []string{"a", "c"}},
		{"unknown ignored", []string{"z"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterNames(names, tt.keep); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("filterNames(%v) = %v, want %v", tt.keep, got, tt.want)
			}
		})
	}
}
