// Package scene assembles renderer scene descriptions from templates.
//
// The scene-description text format belongs to the renderer under test;
// this package treats it as opaque and only swaps whole directive
// statements: the Integrator and Sampler lines that select the algorithm
// and sample budget for a run. A directive statement is the directive line
// itself plus any immediately following indented parameter lines, which is
// how multi-line parameter lists are written in these files.
package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/renderlab/renderbench/pkg/errors"
)

var (
	integratorRe = directiveRe("Integrator")
	samplerRe    = directiveRe("Sampler")
)

// directiveRe matches a directive statement: the keyword at the start of a
// line, the rest of that line, and any continuation lines that start with
// whitespace followed by a quoted parameter name.
func directiveRe(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + keyword + `\b[^\n]*(?:\n[ \t]+"[^\n]*)*`)
}

// Template is a scene description with substitutable directives.
type Template struct {
	text string
}

// LoadTemplate reads a scene template file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene template %s", path)
	}
	if err != nil {
		return nil, err
	}
	return &Template{text: string(data)}, nil
}

// NewTemplate wraps scene text already in memory.
func NewTemplate(text string) *Template {
	return &Template{text: text}
}

// Text returns the current scene description.
func (t *Template) Text() string {
	return t.text
}

// SetIntegrator returns a copy of the template with its Integrator
// statement replaced. A template without one gets the directive prepended.
func (t *Template) SetIntegrator(directive string) *Template {
	return &Template{text: setDirective(t.text, integratorRe, directive)}
}

// SetSampler returns a copy of the template with its Sampler statement
// replaced. A template without one gets the directive prepended.
func (t *Template) SetSampler(directive string) *Template {
	return &Template{text: setDirective(t.text, samplerRe, directive)}
}

// WriteFile writes the scene description to path. The renderer reads the
// scene from its scene directory, so this overwrites the per-run scene file
// next to the template.
func (t *Template) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(t.text), 0644)
}

// setDirective replaces the first matching directive statement with the
// given text and removes any further matches, so a template that carries
// several (e.g. commented-out experiments pasted in by hand) ends up with
// exactly one. Splicing by index avoids regexp replacement-string
// expansion: directives routinely contain $ and \ characters.
func setDirective(text string, re *regexp.Regexp, directive string) string {
	directive = strings.TrimRight(directive, " \t")

	loc := re.FindStringIndex(text)
	if loc == nil {
		if text == "" {
			return directive + "\n"
		}
		return directive + "\n" + text
	}

	head := text[:loc[0]] + directive
	tail := text[loc[1]:]

	// Drop any remaining occurrences.
	for {
		next := re.FindStringIndex(tail)
		if next == nil {
			break
		}
		tail = tail[:next[0]] + tail[next[1]:]
		tail = strings.Replace(tail, "\n\n\n", "\n\n", 1)
	}

	return head + tail
}

// SceneFile derives the path the composed scene is written to: the
// template path with a "-run" suffix before the extension, keeping the
// template itself pristine between runs.
func SceneFile(templatePath string) string {
	ext := filepath.Ext(templatePath)
	return fmt.Sprintf("%s-run%s", strings.TrimSuffix(templatePath, ext), ext)
}
