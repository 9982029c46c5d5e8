package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/startrc/internal/testutil"
	"github.com/leapstack-labs/startrc/pkg/core"
)

// manualNotifier collects registered work so tests can trigger the
// start-up-complete moment explicitly.
type manualNotifier struct {
	pending []func()
}

func (n *manualNotifier) AfterStartup(fn func()) { n.pending = append(n.pending, fn) }

func (n *manualNotifier) fire() {
	for _, fn := range n.pending {
		fn()
	}
	n.pending = nil
}

func newTestSession(t *testing.T, dir string, cfg SessionConfig) *Session {
	t.Helper()
	if cfg.Engine == nil {
		loader := &recordingLoader{}
		cfg.Engine = newTestEngine(t, loader)
	}
	cfg.Dir = dir
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestSession_MissingDirectoryIsFatal(t *testing.T) {
	sess := newTestSession(t, filepath.Join(t.TempDir(), "absent"), SessionConfig{})

	_, err := sess.Run()
	var fatal *core.FatalSessionError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalSessionError, got %v", err)
	}
}

func TestSession_FileInsteadOfDirectoryIsFatal(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fragments")
	if err := os.WriteFile(file, []byte("not a dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	sess := newTestSession(t, file, SessionConfig{})
	if _, err := sess.Run(); err == nil {
		t.Fatal("Run() should fail when the target is not a directory")
	}
}

func TestSession_ResolvesSymlink(t *testing.T) {
	real := t.TempDir()
	writeFragments(t, real, "00_a.star")

	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	loader := &recordingLoader{}
	sess := newTestSession(t, link, SessionConfig{Engine: newTestEngine(t, loader)})

	runLog, err := sess.Run()
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if len(runLog.Successes()) != 1 {
		t.Fatalf("expected one success, got %+v", runLog.Successes())
	}
	// The search path holds the resolved real path, not the link.
	paths := sess.engine.Resolver().Paths()
	resolvedReal, err := filepath.EvalSymlinks(real)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != resolvedReal {
		t.Errorf("search path = %v, want [%s]", paths, resolvedReal)
	}
}

func TestSession_EndToEndOrder(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "10_b.star", "windows-only.star", "00_a.star")

	loader := &recordingLoader{}
	sess := newTestSession(t, dir, SessionConfig{
		Engine: newTestEngine(t, loader),
		Facts:  core.Facts{Windows: true, Display: true},
	})

	runLog, err := sess.Run()
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var bases []string
	for _, p := range loader.loaded {
		bases = append(bases, filepath.Base(p))
	}
	want := []string{"00_a.star", "10_b.star", "windows-only.star"}
	if len(bases) != len(want) {
		t.Fatalf("load order = %v, want %v", bases, want)
	}
	for i := range want {
		if bases[i] != want[i] {
			t.Errorf("load order[%d] = %q, want %q", i, bases[i], want[i])
		}
	}
	if runLog.HasFailures() {
		t.Errorf("unexpected failures: %+v", runLog.Failures())
	}
}

func TestSession_PlatformPassSkippedWithoutFact(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "00_a.star", "windows-only.star")

	loader := &recordingLoader{}
	sess := newTestSession(t, dir, SessionConfig{
		Engine: newTestEngine(t, loader),
		Facts:  core.Facts{Linux: true, Display: true},
	})

	if _, err := sess.Run(); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	for _, p := range loader.loaded {
		if filepath.Base(p) == "windows-only.star" {
			t.Error("windows fragment must not load on linux facts")
		}
	}
}

func TestSession_VisibilityPolicies(t *testing.T) {
	tests := []struct {
		name        string
		visibility  core.Visibility
		failLoad    bool
		wantPresent bool
	}{
		{"always with clean run", core.VisibilityAlways, false, true},
		{"always with failures", core.VisibilityAlways, true, true},
		{"errorsOnly with clean run", core.VisibilityErrorsOnly, false, false},
		{"errorsOnly with failures", core.VisibilityErrorsOnly, true, true},
		{"never with failures", core.VisibilityNever, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFragments(t, dir, "00_a.star")

			loader := &recordingLoader{}
			if tt.failLoad {
				loader.failOn = map[string]string{"00_a.star": "boom"}
			}

			notifier := &manualNotifier{}
			var presented []string
			sess := newTestSession(t, dir, SessionConfig{
				Engine:     newTestEngine(t, loader),
				Visibility: tt.visibility,
				Notifier:   notifier,
				Present:    func(log string) { presented = append(presented, log) },
			})

			if _, err := sess.Run(); err != nil {
				t.Fatalf("Run() failed: %v", err)
			}

			// Nothing is presented until start-up completes.
			if len(presented) != 0 {
				t.Fatal("presentation must be deferred to the notifier")
			}
			notifier.fire()

			if got := len(presented) > 0; got != tt.wantPresent {
				t.Errorf("presented = %v, want %v", got, tt.wantPresent)
			}
		})
	}
}

func TestSession_RenderLog(t *testing.T) {
	dir := t.TempDir()
	writeFragments(t, dir, "00_a.star", "10_bad.star")

	loader := &recordingLoader{failOn: map[string]string{"10_bad.star": "boom"}}
	sess := newTestSession(t, dir, SessionConfig{Engine: newTestEngine(t, loader)})

	runLog, err := sess.Run()
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	rendered := sess.RenderLog(runLog)
	for _, want := range []string{"error log", "load log", "search path", "10_bad.star", "00_a.star", dir} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered log missing %q:\n%s", want, rendered)
		}
	}
}

func TestNewSession_Validation(t *testing.T) {
	eng := newTestEngine(t, &recordingLoader{})

	if _, err := NewSession(SessionConfig{Dir: "x"}); err == nil {
		t.Error("NewSession() should require an engine")
	}
	if _, err := NewSession(SessionConfig{Engine: eng}); err == nil {
		t.Error("NewSession() should require a directory")
	}
	if _, err := NewSession(SessionConfig{Engine: eng, Dir: "x", Visibility: "sometimes"}); err == nil {
		t.Error("NewSession() should reject unknown visibility")
	}
}
