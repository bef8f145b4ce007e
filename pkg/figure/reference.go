package figure

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/renderlab/renderbench/pkg/config"
	"github.com/renderlab/renderbench/pkg/errors"
	"github.com/renderlab/renderbench/pkg/imgio"
)

// referenceSet resolves and decodes the per-scene reference renders.
// Decoded references are kept for the lifetime of one Generate call, since
// every render of a scene compares against the same one or two images.
type referenceSet struct {
	suite   *config.Suite
	decoded map[string]*imgio.Image
}

func newReferenceSet(s *config.Suite) *referenceSet {
	return &referenceSet{suite: s, decoded: make(map[string]*imgio.Image)}
}

// pathFor returns the reference image an output render is compared
// against: the direct-illumination reference when the render's path
// carries a direct-only marker (this includes variant directories named
// after direct-sampling strategies), the full-transport reference
// otherwise. The reference is found by its name marker rather than an
// exact filename, so suites may carry references in any float format.
func (r *referenceSet) pathFor(imagePath, sceneName string) (string, error) {
	marker := config.RefGlobalMarker
	if config.IsDirectOnly(imagePath) {
		marker = config.RefDirectMarker
	}

	sceneDir := filepath.Join(r.suite.OutputDir, sceneName)
	entries, err := os.ReadDir(sceneDir)
	if err != nil {
		return "", errors.New(errors.ErrCodeReferenceMissing,
			"no references for scene %s (run the suite first)", sceneName)
	}
	for _, e := range entries {
		if !e.IsDir() && imgio.IsFloatImage(e.Name()) && strings.Contains(e.Name(), marker) {
			return filepath.Join(sceneDir, e.Name()), nil
		}
	}
	return "", errors.New(errors.ErrCodeReferenceMissing,
		"reference %s for %s does not exist (run the suite first)",
		filepath.Join(sceneDir, marker), imagePath)
}

// load decodes a reference image, reusing an earlier decode of the same
// file.
func (r *referenceSet) load(path string) (*imgio.Image, error) {
	if img, ok := r.decoded[path]; ok {
		return img, nil
	}
	img, err := imgio.Decode(path)
	if err != nil {
		return nil, err
	}
	r.decoded[path] = img
	return img, nil
}
