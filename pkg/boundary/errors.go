package boundary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed matches every *MalformedError.
	ErrMalformed = errors.New("malformed artifact")

	// ErrMissingMarker means the previous artifact has no boundary marker.
	ErrMissingMarker = errors.New("missing boundary marker")

	// ErrDuplicateMarker means the previous artifact has more than one marker.
	ErrDuplicateMarker = errors.New("duplicate boundary marker")

	// ErrGeneratedMarker means the new generated region already contains a marker.
	ErrGeneratedMarker = errors.New("generated region contains a boundary marker")

	// ErrUnknownLanguage is returned for languages without a marker format.
	ErrUnknownLanguage = errors.New("unknown language")
)

// MalformedError describes an artifact whose boundary cannot be trusted.
type MalformedError struct {
	// Kind is ErrMissingMarker, ErrDuplicateMarker or ErrGeneratedMarker.
	Kind error

	// Lines holds the 1-based line numbers of the marker headers found.
	Lines []int

	// Reason adds detail, e.g. which marker line did not match.
	Reason string
}

func (e *MalformedError) Error() string {
	var b strings.Builder
	b.WriteString("boundary: ")
	b.WriteString(e.Kind.Error())
	if len(e.Lines) > 0 {
		nums := make([]string, len(e.Lines))
		for i, n := range e.Lines {
			nums[i] = fmt.Sprint(n)
		}
		if len(nums) == 1 {
			b.WriteString(" at line ")
		} else {
			b.WriteString(" at lines ")
		}
		b.WriteString(strings.Join(nums, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Unwrap returns the specific kind so errors.Is(err, ErrDuplicateMarker) works.
func (e *MalformedError) Unwrap() error {
	return e.Kind
}

// Is reports true for ErrMalformed in addition to the wrapped kind.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// FirstLine returns the first recorded marker line, or 0.
func (e *MalformedError) FirstLine() int {
	if len(e.Lines) == 0 {
		return 0
	}
	return e.Lines[0]
}
