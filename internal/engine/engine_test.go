package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/startrc/internal/artifact"
	"github.com/leapstack-labs/startrc/internal/testutil"
	"github.com/leapstack-labs/startrc/pkg/core"
)

// recordingLoader records every load and fails for configured base names.
type recordingLoader struct {
	loaded  []string
	failOn  map[string]string // base name -> error message
}

func (l *recordingLoader) Load(path string) error {
	l.loaded = append(l.loaded, path)
	if msg, ok := l.failOn[filepath.Base(path)]; ok {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func writeFragments(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x = 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestEngine(t *testing.T, loader core.Loader) *Engine {
	t.Helper()
	resolver, err := artifact.New(artifact.Config{Logger: testutil.NewTestLogger(t)})
	if err != nil {
		t.Fatal(err)
	}
	eng, err := New(Config{Resolver: resolver, Loader: loader, Logger: testutil.NewTestLogger(t)})
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestRunPass_SortedOrder(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "10_b.star", "00_a.star", "20_c.star")

	loader := &recordingLoader{}
	eng := newTestEngine(t, loader)

	runLog := core.NewRunLog()
	pass := core.Pass{Name: "default", Pattern: regexp.MustCompile(`^[0-9][0-9]`), Sorted: true}
	if err := eng.RunPass(pass, dir, runLog); err != nil {
		t.Fatalf("RunPass() failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "00_a.star"),
		filepath.Join(dir, "10_b.star"),
		filepath.Join(dir, "20_c.star"),
	}
	if !reflect.DeepEqual(loader.loaded, want) {
		t.Errorf("load order = %v, want %v", loader.loaded, want)
	}
}

func TestRunPass_FailureIsolation(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "00_a.star", "10_bad.star", "20_c.star")

	loader := &recordingLoader{failOn: map[string]string{"10_bad.star": "undefined symbol"}}
	eng := newTestEngine(t, loader)

	runLog := core.NewRunLog()
	pass := core.Pass{Name: "default", Pattern: regexp.MustCompile(`^[0-9][0-9]`), Sorted: true}
	if err := eng.RunPass(pass, dir, runLog); err != nil {
		t.Fatalf("RunPass() must not propagate per-fragment failures: %v", err)
	}

	if got := len(loader.loaded); got != 3 {
		t.Errorf("all three candidates should be attempted, got %d", got)
	}

	succ := runLog.Successes()
	if len(succ) != 2 ||
		filepath.Base(succ[0].Name) != "00_a.star" ||
		filepath.Base(succ[1].Name) != "20_c.star" {
		t.Errorf("success stream = %+v, want 00_a.star then 20_c.star", succ)
	}

	fail := runLog.Failures()
	if len(fail) != 1 || filepath.Base(fail[0].Name) != "10_bad.star" {
		t.Fatalf("failure stream = %+v, want exactly 10_bad.star", fail)
	}
	if !strings.Contains(fail[0].Message, "undefined symbol") {
		t.Errorf("failure message %q should carry the loader's message verbatim", fail[0].Message)
	}
}

func TestRunPass_DisplayNameIsResolvedPath(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "00_a.star")

	loader := &recordingLoader{}
	eng := newTestEngine(t, loader)

	runLog := core.NewRunLog()
	pass := core.Pass{Name: "default", Pattern: regexp.MustCompile(`^[0-9][0-9]`), Sorted: true}
	if err := eng.RunPass(pass, dir, runLog); err != nil {
		t.Fatalf("RunPass() failed: %v", err)
	}

	succ := runLog.Successes()
	if len(succ) != 1 {
		t.Fatalf("expected one success, got %+v", succ)
	}
	if want := filepath.Join(dir, "00_a.star"); succ[0].Name != want {
		t.Errorf("display name = %q, want resolved path %q", succ[0].Name, want)
	}
	if succ[0].Elapsed < 0 {
		t.Errorf("elapsed time not recorded: %v", succ[0].Elapsed)
	}
}

// failingCompiler always reports a compile failure.
type failingCompiler struct{}

func (failingCompiler) Compile(string) error { return fmt.Errorf("parse error at line 3") }

func TestRunPass_CompileFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "00_bad.star", "10_ok.star")

	resolver, err := artifact.New(artifact.Config{CompileEnabled: true, Compiler: failingCompiler{}})
	if err != nil {
		t.Fatal(err)
	}
	loader := &recordingLoader{}
	eng, err := New(Config{Resolver: resolver, Loader: loader, Logger: testutil.NewTestLogger(t)})
	if err != nil {
		t.Fatal(err)
	}

	runLog := core.NewRunLog()
	pass := core.Pass{Name: "default", Pattern: regexp.MustCompile(`^[0-9][0-9]`), Sorted: true}
	if err := eng.RunPass(pass, dir, runLog); err != nil {
		t.Fatalf("RunPass() failed: %v", err)
	}

	// Both candidates hit the failing compiler; both failures are
	// recorded and the pass still completes.
	fail := runLog.Failures()
	if len(fail) != 2 {
		t.Fatalf("failure stream = %+v, want two entries", fail)
	}
	for _, f := range fail {
		if !strings.Contains(f.Message, "parse error at line 3") {
			t.Errorf("failure message %q should carry the compiler's message", f.Message)
		}
	}
	if len(loader.loaded) != 0 {
		t.Errorf("nothing should load after a compile failure, got %v", loader.loaded)
	}
}

func TestRunPass_RegistersSearchPathOnce(t *testing.T) {
	dir := t.TempDir()
	loader := &recordingLoader{}
	eng := newTestEngine(t, loader)

	runLog := core.NewRunLog()
	pass := core.Pass{Name: "default", Pattern: regexp.MustCompile(`.`), Sorted: true}
	for i := 0; i < 3; i++ {
		if err := eng.RunPass(pass, dir, runLog); err != nil {
			t.Fatalf("RunPass() failed: %v", err)
		}
	}

	if paths := eng.Resolver().Paths(); len(paths) != 1 {
		t.Errorf("search path should hold the directory once, got %v", paths)
	}
}
