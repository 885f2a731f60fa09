package boundary

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
)

const pyMarker = `# ************* End of generated code ***********
# DO NOT EDIT THIS COMMENT BLOCK!
#
# Code below this comment block will be preserved
# if the code for this class is re-generated.
# ***********************************************`

func ptr(s string) *string { return &s }

func TestMarker(t *testing.T) {
	if got := Marker(Python); got != pyMarker {
		t.Errorf("Marker(Python) =\n%s\nwant\n%s", got, pyMarker)
	}

	cpp := Marker(CPlusPlus)
	if !strings.HasPrefix(cpp, "// ************* End of generated code ***********\n// DO NOT EDIT") {
		t.Errorf("Marker(CPlusPlus) = %q", cpp)
	}
	if strings.Count(cpp, "\n") != MarkerLen-1 {
		t.Errorf("Marker(CPlusPlus) has %d lines", strings.Count(cpp, "\n")+1)
	}

	if got := Marker(Unknown); got != "" {
		t.Errorf("Marker(Unknown) = %q, want empty", got)
	}
}

func TestMerge_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		generated string
		previous  *string
		want      string
		wantErr   error
	}{
		{
			name:      "replaces generated region and keeps handlers",
			generated: "NEW_CODE\n",
			previous:  ptr("OLD_CODE\n" + pyMarker + "\nCUSTOM_HANDLER()\n"),
			want:      "NEW_CODE\n" + pyMarker + "\nCUSTOM_HANDLER()\n",
		},
		{
			name:      "no previous artifact",
			generated: "NEW_CODE\n",
			previous:  nil,
			want:      "NEW_CODE\n" + pyMarker + "\n",
		},
		{
			name:      "duplicate marker",
			generated: "NEW_CODE\n",
			previous:  ptr("OLD\n" + pyMarker + "\nA\n" + pyMarker + "\nB\n"),
			wantErr:   ErrDuplicateMarker,
		},
		{
			name:      "missing marker",
			generated: "NEW_CODE\n",
			previous:  ptr("OLD_CODE\nCUSTOM_HANDLER()\n"),
			wantErr:   ErrMissingMarker,
		},
		{
			name:      "empty previous file has no marker",
			generated: "NEW_CODE\n",
			previous:  ptr(""),
			wantErr:   ErrMissingMarker,
		},
		{
			name:      "marker at end of file without newline",
			generated: "NEW_CODE\n",
			previous:  ptr("OLD_CODE\n" + pyMarker),
			want:      "NEW_CODE\n" + pyMarker + "\n",
		},
		{
			name:      "generated region without trailing newline",
			generated: "NEW_CODE",
			previous:  ptr("OLD\n" + pyMarker + "\nX\n"),
			want:      "NEW_CODE\n" + pyMarker + "\nX\n",
		},
		{
			name:      "generated region carries its own marker",
			generated: "NEW_CODE\n" + pyMarker + "\n",
			previous:  nil,
			wantErr:   ErrGeneratedMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(Python, tt.generated, tt.previous)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("err = %v, should match ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Merge() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestMerge_Seed(t *testing.T) {
	m := Merger{Lang: Ruby, Seed: "\nend  # end of MyDialog class\n"}

	first, err := m.Merge("class MyDialog\n", nil)
	if err != nil {
		t.Fatal(err)
	}
	wantFirst := "class MyDialog\n" + Marker(Ruby) + "\n\nend  # end of MyDialog class\n"
	if first != wantFirst {
		t.Errorf("first = %q, want %q", first, wantFirst)
	}

	// Once the artifact exists the seed is ignored and the file's own
	// preserved region wins.
	edited := strings.Replace(first, "\nend  #", "\n  def on_ok\n  end\nend  #", 1)
	second, err := m.Merge("class MyDialog # v2\n", &edited)
	if err != nil {
		t.Fatal(err)
	}
	art, err := Split(Ruby, second)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(art.Preserved, "def on_ok") {
		t.Errorf("preserved region lost user code: %q", art.Preserved)
	}
	if strings.Count(second, "end  # end of MyDialog class") != 1 {
		t.Errorf("seed duplicated: %q", second)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	prev := "old\n" + pyMarker + "\n    def OnInit(self, event):\n        event.Skip()\n"
	first, err := Merge(Python, "gen\n", &prev)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Merge(Python, "gen\n", &first)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second pass differs:\n%q\n%q", first, second)
	}
}

func TestMerge_RoundTripEmptyPreserved(t *testing.T) {
	for _, lang := range Languages() {
		t.Run(lang.String(), func(t *testing.T) {
			out1, err := Merge(lang, "G1\n", nil)
			if err != nil {
				t.Fatal(err)
			}
			out2, err := Merge(lang, "G2\n", &out1)
			if err != nil {
				t.Fatal(err)
			}
			art, err := Split(lang, out2)
			if err != nil {
				t.Fatal(err)
			}
			if art.Preserved != "" {
				t.Errorf("Preserved = %q, want empty", art.Preserved)
			}
			if art.Generated != "G2\n" {
				t.Errorf("Generated = %q, want %q", art.Generated, "G2\n")
			}
		})
	}
}

func TestMerge_PreservationProperty(t *testing.T) {
	property := func(g0, g1, preserved string) bool {
		if ContainsMarker(Python, g0) || ContainsMarker(Python, g1) || ContainsMarker(Python, preserved) {
			return true
		}
		prev, err := Compose(Python, g0, preserved)
		if err != nil {
			return false
		}
		out, err := Merge(Python, g1, &prev)
		if err != nil {
			return false
		}
		art, err := Split(Python, out)
		return err == nil && art.Preserved == preserved
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

func TestMerge_PreservesBytesVerbatim(t *testing.T) {
	preserved := "\r\n\t# trailing spaces   \r\n\n\ndef handler():\r\n    pass  \n\n"
	prev := "generated\r\n" + strings.ReplaceAll(pyMarker, "\n", "\r\n") + "\r\n" + preserved

	out, err := Merge(Python, "regenerated\n", &prev)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out, pyMarker+"\n"+preserved) {
		t.Errorf("preserved region changed: %q", out)
	}
}

func TestSplit(t *testing.T) {
	text := "line1\nline2\n" + pyMarker + "\nuser\n"
	art, err := Split(Python, text)
	if err != nil {
		t.Fatal(err)
	}
	if art.Generated != "line1\nline2\n" {
		t.Errorf("Generated = %q", art.Generated)
	}
	if art.Preserved != "user\n" {
		t.Errorf("Preserved = %q", art.Preserved)
	}
	if art.Line != 3 {
		t.Errorf("Line = %d, want 3", art.Line)
	}
}

func TestSplit_ToleratesLongerHeader(t *testing.T) {
	marker := strings.Replace(pyMarker, "***********\n# DO NOT", "******************\n# DO NOT", 1)
	art, err := Split(Python, "g\n"+marker+"\nu\n")
	if err != nil {
		t.Fatal(err)
	}
	if art.Preserved != "u\n" {
		t.Errorf("Preserved = %q", art.Preserved)
	}
}

func TestSplit_Malformed(t *testing.T) {
	lines := strings.Split(pyMarker, "\n")

	tests := []struct {
		name      string
		text      string
		wantKind  error
		wantLines []int
	}{
		{
			name:      "two markers",
			text:      "a\n" + pyMarker + "\nb\n" + pyMarker + "\n",
			wantKind:  ErrDuplicateMarker,
			wantLines: []int{2, 9},
		},
		{
			name:      "truncated block",
			text:      "a\n" + strings.Join(lines[:3], "\n") + "\n",
			wantKind:  ErrMissingMarker,
			wantLines: []int{2},
		},
		{
			name:      "edited block",
			text:      "a\n" + strings.Replace(pyMarker, "DO NOT EDIT", "PLEASE EDIT", 1) + "\n",
			wantKind:  ErrMissingMarker,
			wantLines: []int{2},
		},
		{
			name:     "marker for another language",
			text:     "a\n" + Marker(CPlusPlus) + "\n",
			wantKind: ErrMissingMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(Python, tt.text)
			var merr *MalformedError
			if !errors.As(err, &merr) {
				t.Fatalf("err = %v, want *MalformedError", err)
			}
			if merr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", merr.Kind, tt.wantKind)
			}
			if len(merr.Lines) != len(tt.wantLines) {
				t.Fatalf("Lines = %v, want %v", merr.Lines, tt.wantLines)
			}
			for i := range tt.wantLines {
				if merr.Lines[i] != tt.wantLines[i] {
					t.Errorf("Lines = %v, want %v", merr.Lines, tt.wantLines)
				}
			}
		})
	}
}

func TestSplit_UnknownLanguage(t *testing.T) {
	_, err := Split(Unknown, "x")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("err = %v, want ErrUnknownLanguage", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("unknown language is not a malformed artifact")
	}
}

func TestMalformedError_Error(t *testing.T) {
	err := &MalformedError{Kind: ErrDuplicateMarker, Lines: []int{4, 12}}
	want := "boundary: duplicate boundary marker at lines 4, 12"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.FirstLine() != 4 {
		t.Errorf("FirstLine() = %d", err.FirstLine())
	}

	single := &MalformedError{Kind: ErrMissingMarker, Lines: []int{7}, Reason: "comment block is truncated"}
	want = "boundary: missing boundary marker at line 7: comment block is truncated"
	if single.Error() != want {
		t.Errorf("Error() = %q, want %q", single.Error(), want)
	}
}
