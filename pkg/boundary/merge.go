package boundary

import (
	"fmt"
	"strings"
)

// Artifact is a parsed generated artifact.
type Artifact struct {
	// Generated is everything before the marker block.
	Generated string

	// Preserved is everything after the marker block, verbatim.
	Preserved string

	// Line is the 1-based line of the marker header.
	Line int
}

// Split locates the single marker block in text and returns both regions.
func Split(lang Language, text string) (Artifact, error) {
	if !lang.Valid() {
		return Artifact{}, fmt.Errorf("boundary: %w: %d", ErrUnknownLanguage, int(lang))
	}

	lines := splitLines(text)
	headers := findHeaders(text, lines, lang)
	switch len(headers) {
	case 0:
		return Artifact{}, &MalformedError{Kind: ErrMissingMarker}
	case 1:
	default:
		nums := make([]int, len(headers))
		for i, h := range headers {
			nums[i] = h + 1
		}
		return Artifact{}, &MalformedError{Kind: ErrDuplicateMarker, Lines: nums}
	}

	first := headers[0]
	want := MarkerLines(lang)
	for i := 1; i < MarkerLen; i++ {
		idx := first + i
		if idx >= len(lines) {
			return Artifact{}, &MalformedError{
				Kind:   ErrMissingMarker,
				Lines:  []int{first + 1},
				Reason: "comment block is truncated",
			}
		}
		if got := lines[idx].text(text); got != want[i] {
			return Artifact{}, &MalformedError{
				Kind:   ErrMissingMarker,
				Lines:  []int{first + 1},
				Reason: fmt.Sprintf("line %d of the comment block is %q, want %q", idx+1, got, want[i]),
			}
		}
	}

	last := lines[first+MarkerLen-1]
	return Artifact{
		Generated: text[:lines[first].start],
		Preserved: text[last.next:],
		Line:      first + 1,
	}, nil
}

// Compose builds an artifact from a generated region and a preserved region.
// A newline is added after generated when it does not end with one.
func Compose(lang Language, generated, preserved string) (string, error) {
	if !lang.Valid() {
		return "", fmt.Errorf("boundary: %w: %d", ErrUnknownLanguage, int(lang))
	}
	lines := splitLines(generated)
	if headers := findHeaders(generated, lines, lang); len(headers) > 0 {
		nums := make([]int, len(headers))
		for i, h := range headers {
			nums[i] = h + 1
		}
		return "", &MalformedError{Kind: ErrGeneratedMarker, Lines: nums}
	}

	marker := Marker(lang)
	var b strings.Builder
	b.Grow(len(generated) + len(marker) + len(preserved) + 2)
	b.WriteString(generated)
	if generated != "" && !strings.HasSuffix(generated, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(marker)
	b.WriteByte('\n')
	b.WriteString(preserved)
	return b.String(), nil
}

// Merger regenerates artifacts for one language.
type Merger struct {
	// Lang selects the marker comment prefix.
	Lang Language

	// Seed is the preserved region written when no previous artifact
	// exists. It is ignored once an artifact exists.
	Seed string
}

// Merge produces the new artifact text. previous is nil when no artifact
// exists yet. Otherwise the preserved region of *previous is carried over
// unchanged, and a previous artifact without exactly one marker is an error.
func (m Merger) Merge(generated string, previous *string) (string, error) {
	if previous == nil {
		return Compose(m.Lang, generated, m.Seed)
	}
	art, err := Split(m.Lang, *previous)
	if err != nil {
		return "", err
	}
	return Compose(m.Lang, generated, art.Preserved)
}

// Merge is shorthand for Merger{Lang: lang}.Merge(generated, previous).
func Merge(lang Language, generated string, previous *string) (string, error) {
	return Merger{Lang: lang}.Merge(generated, previous)
}
