// Package emit turns form trees into the generated region of a source
// artifact.
//
// The emitters write everything above the boundary marker: the file
// banner, the class with its widget construction, event bindings, and a
// commented-out list of handler stubs the user has not written yet.
// Handler stubs are never placed below the marker; the user copies them.
package emit

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/form"
)

// Emitter generates code for one target language.
type Emitter interface {
	// Language is the target language.
	Language() boundary.Language

	// Generate returns the generated region for root. Handlers named in
	// existing are already written by the user and get no stub.
	Generate(root *form.Node, existing map[string]bool) string

	// Seed returns the preserved region of a freshly created artifact.
	Seed(root *form.Node) string

	// FileName returns the default artifact name for root.
	FileName(root *form.Node) string
}

// For returns the emitter for lang.
func For(lang boundary.Language) (Emitter, error) {
	switch lang {
	case boundary.Python:
		return Python{}, nil
	case boundary.Ruby:
		return Ruby{}, nil
	default:
		return nil, fmt.Errorf("emit: no emitter for %s", lang)
	}
}

// ExistingHandlers returns the handler names the user already defined in
// the preserved region of previous: every line whose trimmed text starts
// with "def <name>". A previous artifact without a valid marker yields no
// names.
func ExistingHandlers(lang boundary.Language, previous string) map[string]bool {
	names := make(map[string]bool)
	art, err := boundary.Split(lang, previous)
	if err != nil {
		return names
	}
	for _, line := range strings.Split(art.Preserved, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "def ")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		end := strings.IndexFunc(rest, func(r rune) bool {
			return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if end < 0 {
			end = len(rest)
		}
		if end > 0 {
			names[rest[:end]] = true
		}
	}
	return names
}

// SnakeCase converts a class name such as "MainDialog" to "main_dialog".
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && runes[i-1] != '_')) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

const banner = `###############################################################################
# Code generated by keepblock. Edit the form definition instead.
#
# Do not edit any code above the "End of generated code" comment block.
# Any changes before that block will be lost if it is re-generated!
###############################################################################
`

// code accumulates indented lines.
type code struct {
	b      strings.Builder
	indent int
	unit   string
}

func (c *code) line(format string, args ...any) {
	if format == "" {
		c.b.WriteByte('\n')
		return
	}
	c.b.WriteString(strings.Repeat(c.unit, c.indent))
	fmt.Fprintf(&c.b, format, args...)
	c.b.WriteByte('\n')
}

func (c *code) raw(s string) {
	c.b.WriteString(s)
}

func (c *code) String() string {
	return c.b.String()
}

// handlerStubs returns the handlers bound in root that the user has not
// written, in binding order, and whether any user handler was found.
func handlerStubs(root *form.Node, existing map[string]bool) (missing []string, found bool) {
	for _, name := range root.Handlers() {
		if existing[name] {
			found = true
			continue
		}
		missing = append(missing, name)
	}
	return missing, found || len(existing) > 0
}

func stubHeader(found bool) (string, string) {
	if found {
		return "Unimplemented Event handler functions",
			"Copy any listed and paste them below the comment block, or to your inherited class."
	}
	return "Event handler functions",
		"Add these below the comment block, or to your inherited class."
}

// wxPrefix matches toolkit references written in Python form.
var wxPrefix = regexp.MustCompile(`\bwx\.(adv\.)?`)
