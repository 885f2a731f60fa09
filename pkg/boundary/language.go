package boundary

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Language identifies the target language of a generated artifact.
type Language int

const (
	// Unknown is the zero Language and is rejected by every operation.
	Unknown Language = iota
	Python
	Ruby
	Perl
	CPlusPlus
	Rust
	Go
)

var languageNames = map[Language]string{
	Python:    "python",
	Ruby:      "ruby",
	Perl:      "perl",
	CPlusPlus: "cpp",
	Rust:      "rust",
	Go:        "go",
}

var languageAliases = map[string]Language{
	"python":    Python,
	"py":        Python,
	"ruby":      Ruby,
	"rb":        Ruby,
	"perl":      Perl,
	"pl":        Perl,
	"cpp":       CPlusPlus,
	"c++":       CPlusPlus,
	"cplusplus": CPlusPlus,
	"cxx":       CPlusPlus,
	"rust":      Rust,
	"rs":        Rust,
	"go":        Go,
	"golang":    Go,
}

var languageExtensions = map[string]Language{
	".py":  Python,
	".pyw": Python,
	".rb":  Ruby,
	".pl":  Perl,
	".pm":  Perl,
	".cpp": CPlusPlus,
	".cc":  CPlusPlus,
	".cxx": CPlusPlus,
	".h":   CPlusPlus,
	".hh":  CPlusPlus,
	".hpp": CPlusPlus,
	".rs":  Rust,
	".go":  Go,
}

// String returns the canonical lowercase name of the language.
func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

// CommentPrefix returns the line comment token used for the marker block.
func (l Language) CommentPrefix() string {
	switch l {
	case CPlusPlus, Rust, Go:
		return "//"
	case Python, Ruby, Perl:
		return "#"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Language) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("boundary: %w: %d", ErrUnknownLanguage, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLanguage resolves a language name or common alias ("py", "c++").
func ParseLanguage(name string) (Language, error) {
	if lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lang, nil
	}
	return Unknown, fmt.Errorf("boundary: %w: %q", ErrUnknownLanguage, name)
}

// LanguageFromPath infers the language from a file extension.
func LanguageFromPath(path string) (Language, bool) {
	lang, ok := languageExtensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// Languages returns every supported language in declaration order.
func Languages() []Language {
	return []Language{Python, Ruby, Perl, CPlusPlus, Rust, Go}
}
