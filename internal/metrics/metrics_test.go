package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observe(t *testing.T) {
	r := New()
	r.Observe("python", "edited", 120, 3*time.Millisecond)
	r.Observe("python", "edited", 80, time.Millisecond)
	r.Observe("ruby", "current", 0, time.Millisecond)

	if got := testutil.ToFloat64(r.regenerations.WithLabelValues("python", "edited")); got != 2 {
		t.Errorf("python/edited = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.regenerations.WithLabelValues("ruby", "current")); got != 1 {
		t.Errorf("ruby/current = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.preservedBytes); got != 1 {
		t.Errorf("preserved histogram series = %d", got)
	}
}

func TestRecorder_Fail(t *testing.T) {
	r := New(WithNamespace("test"))
	r.Fail("duplicate_marker")
	r.Fail("duplicate_marker")
	r.Fail("io")

	expected := `
# HELP test_regeneration_errors_total Total number of failed regenerations, by error kind
# TYPE test_regeneration_errors_total counter
test_regeneration_errors_total{kind="duplicate_marker"} 2
test_regeneration_errors_total{kind="io"} 1
`
	if err := testutil.CollectAndCompare(r.errors, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.Observe("python", "written", 0, 0)
	r.Fail("io")
}

func TestRecorder_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(WithRegistry(reg), WithConstLabels(prometheus.Labels{"project": "demo"}))
	if r.Registry() != reg {
		t.Fatal("Registry() should return the supplied registry")
	}
	r.Observe("go", "written", 0, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families gathered")
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			found := false
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "project" && lp.GetValue() == "demo" {
					found = true
				}
			}
			if !found {
				t.Errorf("%s missing const label", mf.GetName())
			}
		}
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.Observe("perl", "written", 10, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `keepblock_regenerations_total{language="perl",status="written"} 1`) {
		t.Errorf("metrics body missing counter:\n%s", body)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Observe("cpp", "needed", 0, time.Millisecond)

	path := filepath.Join(t.TempDir(), "keepblock.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `keepblock_regenerations_total{language="cpp",status="needed"} 1`) {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}
