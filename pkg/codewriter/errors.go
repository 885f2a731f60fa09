package codewriter

import (
	"context"
	"errors"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/store"
)

// ArtifactError reports an artifact whose text could not be merged.
type ArtifactError struct {
	Key string
	Err error
}

func (e *ArtifactError) Error() string {
	return "codewriter: " + e.Key + ": " + e.Err.Error()
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// Line returns the 1-based line of the offending marker, or 0.
func (e *ArtifactError) Line() int {
	var merr *boundary.MalformedError
	if errors.As(e.Err, &merr) {
		return merr.FirstLine()
	}
	return 0
}

// BackupError reports a failed snapshot. The artifact is left untouched.
type BackupError struct {
	Key string
	Err error
}

func (e *BackupError) Error() string {
	return "codewriter: backup " + e.Key + ": " + e.Err.Error()
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// Kind classifies err for metrics labels.
func Kind(err error) string {
	var berr *BackupError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, boundary.ErrDuplicateMarker):
		return "duplicate_marker"
	case errors.Is(err, boundary.ErrGeneratedMarker):
		return "generated_marker"
	case errors.Is(err, boundary.ErrMissingMarker):
		return "missing_marker"
	case errors.Is(err, boundary.ErrUnknownLanguage):
		return "unknown_language"
	case errors.Is(err, store.ErrNoFolder):
		return "no_folder"
	case errors.As(err, &berr):
		return "backup"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}
