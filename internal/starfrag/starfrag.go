// Package starfrag binds the loading core to Starlark. It implements the
// Loader and Compiler callbacks: source fragments (.star) execute via the
// interpreter, compiled fragments (.starc) are serialized programs that skip
// parsing and resolution on load.
package starfrag

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Runtime executes fragments one at a time and accumulates their exported
// globals, so later fragments see the definitions of earlier ones. That is
// what makes load order meaningful. Not safe for concurrent use.
type Runtime struct {
	globals starlark.StringDict
	logger  *slog.Logger
}

// New creates an empty runtime.
func New(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runtime{
		globals: make(starlark.StringDict),
		logger:  logger,
	}
}

// Globals returns the accumulated exported globals. The returned dict is
// the runtime's own; callers must treat it as read-only.
func (r *Runtime) Globals() starlark.StringDict { return r.globals }

func (r *Runtime) thread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			r.logger.Info("fragment output", "fragment", name, "msg", msg)
		},
	}
}

// Load executes the fragment at path. A .starc artifact is deserialized
// with CompiledProgram; anything else is executed from source. Exported
// globals (names not starting with _) are merged into the runtime.
func (r *Runtime) Load(path string) error {
	name := filepath.Base(path)
	thread := r.thread(name)

	var (
		globals starlark.StringDict
		err     error
	)
	if strings.HasSuffix(path, core.CompiledExt) {
		globals, err = r.loadCompiled(thread, path)
	} else {
		var src []byte
		src, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read fragment: %w", err)
		}
		globals, err = starlark.ExecFile(thread, path, src, r.globals)
	}
	if err != nil {
		return err
	}

	for k, v := range globals {
		if !strings.HasPrefix(k, "_") {
			r.globals[k] = v
		}
	}
	return nil
}

func (r *Runtime) loadCompiled(thread *starlark.Thread, path string) (starlark.StringDict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open compiled fragment: %w", err)
	}
	defer f.Close()

	prog, err := starlark.CompiledProgram(f)
	if err != nil {
		return nil, fmt.Errorf("corrupt compiled fragment: %w", err)
	}
	return prog.Init(thread, r.globals)
}

// Compile parses and resolves sourcePath and writes the serialized program
// to the .starc sibling. The output is written atomically: a partial file
// is never left behind to be mistaken for a valid artifact.
func (r *Runtime) Compile(sourcePath string) error {
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read fragment source: %w", err)
	}

	_, prog, err := starlark.SourceProgram(sourcePath, src, r.globals.Has)
	if err != nil {
		return err
	}

	out := strings.TrimSuffix(sourcePath, core.SourceExt) + core.CompiledExt
	tmp, err := os.CreateTemp(filepath.Dir(out), ".starc-*")
	if err != nil {
		return fmt.Errorf("failed to create compiled fragment: %w", err)
	}

	if err := prog.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write compiled fragment: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), out)
}
