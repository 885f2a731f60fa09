package errors

import (
	stderrors "errors"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/codewriter"
	"github.com/keepblock/keepblock/pkg/form"
	"github.com/keepblock/keepblock/pkg/store"
)

// Classify converts an error from the regeneration pipeline into a coded
// error. When file is set and the error points at a marker line, the
// location is attached. Coded errors are returned unchanged.
func Classify(err error, file string) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded
	}

	var out *Error
	var pathErr *store.PathError
	var backupErr *codewriter.BackupError
	switch {
	case stderrors.Is(err, boundary.ErrDuplicateMarker):
		out = New("K102").WithSuggestion("Remove all but one \"End of generated code\" comment block, keeping your code below the last one.")
	case stderrors.Is(err, boundary.ErrGeneratedMarker):
		out = New("K103").WithSuggestion("Check the generator output; it must not emit the boundary comment block itself.")
	case stderrors.Is(err, boundary.ErrMissingMarker):
		out = New("K101").WithSuggestion("Restore the comment block, or move the file aside to generate it from scratch.")
	case stderrors.Is(err, boundary.ErrUnknownLanguage):
		out = New("K104").WithSuggestion("Pass --lang or set language in keepblock.yaml.")
	case stderrors.Is(err, store.ErrNoFolder):
		out = New("K203").WithSuggestion("Create the folder, or pass --create-dirs.")
	case stderrors.As(err, &backupErr):
		out = New("K204")
	case stderrors.Is(err, form.ErrInvalid):
		out = New("K401")
	case stderrors.As(err, &pathErr) && pathErr.Op == "read":
		out = New("K201")
	case stderrors.As(err, &pathErr):
		out = New("K202")
	default:
		return &Error{Message: err.Error(), Wrapped: err}
	}
	out = out.Wrap(err)

	if file != "" {
		var merr *boundary.MalformedError
		if stderrors.As(err, &merr) && merr.FirstLine() > 0 {
			out = out.WithLocation(file, merr.FirstLine(), 1)
		}
	}
	return out
}
