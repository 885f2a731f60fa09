package boundary

import "strings"

// markerBody is the invariant text of the marker block after the comment prefix.
var markerBody = [...]string{
	" ************* End of generated code ***********",
	" DO NOT EDIT THIS COMMENT BLOCK!",
	"",
	" Code below this comment block will be preserved",
	" if the code for this class is re-generated.",
	" ***********************************************",
}

// headerText is the part of the first marker line used to find the block.
// Trailing asterisks are not compared.
const headerText = " ************* End of generated code"

// MarkerLines returns the marker block lines for lang, without newlines.
func MarkerLines(lang Language) []string {
	prefix := lang.CommentPrefix()
	if prefix == "" {
		return nil
	}
	lines := make([]string, len(markerBody))
	for i, body := range markerBody {
		lines[i] = prefix + body
	}
	return lines
}

// Marker returns the marker block for lang joined with "\n" and no
// trailing newline. It returns "" for an unsupported language.
func Marker(lang Language) string {
	return strings.Join(MarkerLines(lang), "\n")
}

// MarkerLen is the number of lines in a marker block.
const MarkerLen = len(markerBody)

func header(lang Language) string {
	return lang.CommentPrefix() + headerText
}

// line is one line of a text: text[start:end] without its terminator,
// next is the offset just past the terminator.
type line struct {
	start, end, next int
}

func splitLines(text string) []line {
	var lines []line
	for pos := 0; pos < len(text); {
		idx := strings.IndexByte(text[pos:], '\n')
		if idx < 0 {
			lines = append(lines, line{start: pos, end: len(text), next: len(text)})
			break
		}
		lines = append(lines, line{start: pos, end: pos + idx, next: pos + idx + 1})
		pos += idx + 1
	}
	return lines
}

func (l line) text(s string) string {
	return strings.TrimSuffix(s[l.start:l.end], "\r")
}

// findHeaders returns the indexes of all lines that start a marker block.
func findHeaders(text string, lines []line, lang Language) []int {
	hdr := header(lang)
	var found []int
	for i, l := range lines {
		if strings.HasPrefix(l.text(text), hdr) {
			found = append(found, i)
		}
	}
	return found
}

// ContainsMarker reports whether text contains a marker header for lang.
func ContainsMarker(lang Language, text string) bool {
	if !lang.Valid() {
		return false
	}
	return len(findHeaders(text, splitLines(text), lang)) > 0
}
