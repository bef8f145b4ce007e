package report

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/renderlab/renderbench/pkg/errors"
)

// parseErrorFile reads a relative-error report back into its values. The
// format is the one writeErrorReport in the figure package emits: a header
// line, a "full image:" line, and one "inset N:" line per inset.
func parseErrorFile(path string) (full float64, insets []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		var valueText string
		switch {
		case strings.HasPrefix(line, "full image:"):
			valueText = strings.TrimSpace(strings.TrimPrefix(line, "full image:"))
		case strings.HasPrefix(line, "inset "):
			if _, rest, ok := strings.Cut(line, ":"); ok {
				valueText = strings.TrimSpace(rest)
			}
		default:
			continue
		}

		v, perr := strconv.ParseFloat(valueText, 64)
		if perr != nil {
			return 0, nil, errors.Wrap(errors.ErrCodeInvalidFormat, perr,
				"error report %s: bad value %q", path, valueText)
		}
		if strings.HasPrefix(line, "full image:") {
			full = v
		} else {
			insets = append(insets, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, err
	}
	return full, insets, nil
}
