package errors

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/codewriter"
	"github.com/keepblock/keepblock/pkg/form"
	"github.com/keepblock/keepblock/pkg/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"missing marker", &boundary.MalformedError{Kind: boundary.ErrMissingMarker}, "K101"},
		{"duplicate marker", &codewriter.ArtifactError{Key: "a.py", Err: &boundary.MalformedError{Kind: boundary.ErrDuplicateMarker, Lines: []int{2, 9}}}, "K102"},
		{"generated marker", &boundary.MalformedError{Kind: boundary.ErrGeneratedMarker}, "K103"},
		{"unknown language", boundary.ErrUnknownLanguage, "K104"},
		{"read", &store.PathError{Op: "read", Key: "a", Err: os.ErrPermission}, "K201"},
		{"write", &store.PathError{Op: "write", Key: "a", Err: os.ErrPermission}, "K202"},
		{"no folder", &store.PathError{Op: "mkdir", Key: "a", Err: store.ErrNoFolder}, "K203"},
		{"backup", &codewriter.BackupError{Key: "a", Err: os.ErrPermission}, "K204"},
		{"form", &form.ValidationError{Path: "/D", Reason: "bad"}, "K401"},
		{"plain", stderrors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "")
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}

	if Classify(nil, "") != nil {
		t.Error("Classify(nil) should be nil")
	}
	coded := New("K501")
	if Classify(coded, "") != coded {
		t.Error("coded errors pass through")
	}
}

func TestClassify_Location(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dialog.py")
	if err := os.WriteFile(file, []byte("a\nb\nc\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := Classify(&boundary.MalformedError{Kind: boundary.ErrDuplicateMarker, Lines: []int{2, 3}}, file)
	if err.Location == nil || err.Location.Line != 2 {
		t.Fatalf("Location = %v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("expected context lines")
	}
}

func TestClassify_PlainMessage(t *testing.T) {
	got := Classify(stderrors.New("boom"), "")
	if got.Error() != "boom" {
		t.Errorf("Error() = %q", got.Error())
	}
	DisableColors()
	defer EnableColors()
	if s := got.Format(); strings.Contains(s, "Cause:") {
		t.Errorf("cause repeated:\n%s", s)
	}
}
