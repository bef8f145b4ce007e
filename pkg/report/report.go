// Package report aggregates the artifacts of a benchmark run into one
// summary: the timing journals written by the driver and the
// relative-error reports written by the figure generator, joined per
// rendered image.
package report

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/render"
)

// Report is the aggregated view of an output tree.
type Report struct {
	OutputDir   string    `json:"output_dir"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
}

// Row is one rendered image with whatever data exists for it: timing when
// the driver journaled it, errors when figure data was generated.
type Row struct {
	Scene   string `json:"scene"`
	Config  string `json:"config"` // variant name or baseline directory
	Label   string `json:"label,omitempty"`
	Outfile string `json:"outfile"`

	Mean   float64 `json:"mean_seconds,omitempty"`
	Stddev float64 `json:"stddev_seconds,omitempty"`
	Timed  bool    `json:"timed"`

	FullError   float64   `json:"full_error,omitempty"`
	InsetErrors []float64 `json:"inset_errors,omitempty"`
	Measured    bool      `json:"measured"`
}

// Collect walks an output tree and joins timing journals with error
// reports. Rows are sorted by scene, config, and outfile.
func Collect(outputDir string) (*Report, error) {
	rows := make(map[string]*Row) // keyed by dir-relative image path sans extension

	// Outfiles are keyed without their extension so a journal entry for
	// img.exr and the error report for img.png land on the same row.
	rowFor := func(dir, outfile string) *Row {
		name := strings.TrimSuffix(outfile, filepath.Ext(outfile))
		base := filepath.Join(dir, name)
		if r, ok := rows[base]; ok {
			return r
		}
		rel, err := filepath.Rel(outputDir, dir)
		if err != nil {
			rel = dir
		}
		r := &Row{Outfile: name}
		r.Scene, r.Config = splitScenePath(rel)
		rows[base] = r
		return r
	}

	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dir := filepath.Dir(path)

		switch {
		case d.Name() == render.JournalFile:
			j, err := render.ReadJournal(path)
			if err != nil {
				return err
			}
			for _, e := range j.Entries {
				r := rowFor(dir, e.Outfile)
				r.Label = e.Label
				r.Mean = e.Timing.Mean
				r.Stddev = e.Timing.Stddev
				r.Timed = true
			}
		case strings.HasSuffix(d.Name(), config.ErrorFileSuffix):
			full, insets, err := parseErrorFile(path)
			if err != nil {
				return err
			}
			outfile := strings.TrimSuffix(d.Name(), config.ErrorFileSuffix)
			r := rowFor(dir, outfile)
			r.FullError = full
			r.InsetErrors = insets
			r.Measured = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report := &Report{OutputDir: outputDir, GeneratedAt: time.Now().UTC()}
	for _, r := range rows {
		report.Rows = append(report.Rows, *r)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.Scene != b.Scene {
			return a.Scene < b.Scene
		}
		if a.Config != b.Config {
			return a.Config < b.Config
		}
		return a.Outfile < b.Outfile
	})
	return report, nil
}

// splitScenePath splits an output-relative directory into scene and config.
// References live directly in the scene directory and get an empty config.
func splitScenePath(rel string) (scene, config string) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 0 {
		scene = parts[0]
	}
	if len(parts) > 1 {
		config = parts[1]
	}
	return scene, config
}

// JSON serializes the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
