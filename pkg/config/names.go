package config

import "strings"

// Output-tree naming conventions. The driver writes these names and the
// figure generator interprets them, so they live here rather than in
// either package.
const (
	// RefGlobalMarker tags the full-transport reference render in the
	// scene's output directory; RefDirectMarker tags the
	// direct-illumination-only one.
	RefGlobalMarker = "ref-bdpt"
	RefDirectMarker = "ref-di"

	// RefGlobalImage and RefDirectImage are the filenames the driver
	// writes the references to.
	RefGlobalImage = RefGlobalMarker + ".exr"
	RefDirectImage = RefDirectMarker + ".exr"

	// FactorImageMarker tags diagnostic factor visualizations emitted by
	// the renderer alongside the beauty image. They have no reference and
	// are excluded from figure generation.
	FactorImageMarker = "stratfactor-d"

	// BaselineDir is the per-scene directory holding the path-tracer
	// baseline renders.
	BaselineDir = "path"

	// ErrorFileSuffix names the per-image relative-error report written
	// by figure generation.
	ErrorFileSuffix = "-error.txt"
)

// directOnlyMarkers are filename substrings marking renders that must be
// compared against the direct-illumination reference rather than the
// full-transport one.
var directOnlyMarkers = []string{
	"direct-only",
	"defsampling",
	"optimalmis",
	RefDirectMarker,
}

// IsDirectOnly reports whether the named render is compared against the
// direct-illumination reference.
func IsDirectOnly(name string) bool {
	for _, marker := range directOnlyMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// IsFactorImage reports whether the named file is a diagnostic factor
// visualization.
func IsFactorImage(name string) bool {
	return strings.Contains(name, FactorImageMarker)
}
