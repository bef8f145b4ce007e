package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/renderlab/renderbench/pkg/metrics"
)

// JournalFile is the name of the timing journal written into every
// working directory.
const JournalFile = "timings.json"

// Journal records the timings of every configuration rendered into one
// working directory. The report command aggregates journals across the
// output tree.
type Journal struct {
	RunID     string         `json:"run_id"`
	Scene     string         `json:"scene"`
	Config    string         `json:"config"` // variant name or baseline label
	Renderer  string         `json:"renderer"`
	Repeats   int            `json:"repeats"`
	CreatedAt time.Time      `json:"created_at"`
	Entries   []JournalEntry `json:"entries"`
}

// JournalEntry is one timed render within a journal.
type JournalEntry struct {
	Label   string         `json:"label"`
	Outfile string         `json:"outfile"`
	Timing  metrics.Timing `json:"timing"`
}

func newJournal(runID, sceneName, configName, renderer string, repeats int) *Journal {
	return &Journal{
		RunID:     runID,
		Scene:     sceneName,
		Config:    configName,
		Renderer:  renderer,
		Repeats:   repeats,
		CreatedAt: time.Now().UTC(),
	}
}

func (j *Journal) add(label, outfile string, timing metrics.Timing) {
	j.Entries = append(j.Entries, JournalEntry{Label: label, Outfile: outfile, Timing: timing})
}

// write serializes the journal into dir, replacing any previous journal.
func (j *Journal) write(dir string) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, JournalFile), data, 0644)
}

// ReadJournal loads a timing journal from path.
func ReadJournal(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
