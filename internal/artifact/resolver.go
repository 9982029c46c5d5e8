// Package artifact decides which physical file stands for a logical
// fragment: the source, the compiled sibling, or a freshly compiled one.
package artifact

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Resolver locates fragment artifacts over a configured search path and
// applies the staleness rule. The search path is process-wide mutable state
// with single-writer semantics: it is shared across passes and must not be
// mutated from multiple goroutines without external synchronization.
type Resolver struct {
	paths          []string
	compileEnabled bool
	compiler       core.Compiler
	logger         *slog.Logger
}

// Config holds resolver configuration.
type Config struct {
	// CompileEnabled turns on staleness-driven recompilation.
	CompileEnabled bool

	// Compiler produces compiled artifacts. Required when CompileEnabled.
	Compiler core.Compiler

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a resolver with an empty search path.
func New(cfg Config) (*Resolver, error) {
	if cfg.CompileEnabled && cfg.Compiler == nil {
		return nil, fmt.Errorf("compilation enabled but no compiler configured")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		compileEnabled: cfg.CompileEnabled,
		compiler:       cfg.Compiler,
		logger:         logger,
	}, nil
}

// AddPath registers dir as a search-path root. Adding the same directory
// twice is a no-op; existing search order is never disturbed.
func (r *Resolver) AddPath(dir string) {
	dir = filepath.Clean(dir)
	for _, p := range r.paths {
		if p == dir {
			return
		}
	}
	r.paths = append(r.paths, dir)
	r.logger.Debug("registered search path", "dir", dir)
}

// Paths returns a copy of the current search path in registration order.
func (r *Resolver) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// lookup returns the first hit for file across the search path.
func (r *Resolver) lookup(file string) (string, fs.FileInfo, bool) {
	for _, dir := range r.paths {
		full := filepath.Join(dir, file)
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return full, info, true
		}
	}
	return "", nil, false
}

// Resolve maps a logical fragment name (extension-stripped base name) to
// the concrete path that should be loaded, compiling first when the compiled
// artifact is stale. Rules, in order:
//
//   - compilation disabled: prefer the compiled artifact, else the source.
//   - only a compiled artifact exists: load it as-is, never compile.
//   - source exists and the compiled artifact is missing or older than the
//     source: delete the stale compiled file, compile, load the result.
//   - otherwise: load the existing compiled artifact.
//
// Neither artifact present is an ArtifactIntegrityError; the broken pair is
// reported per fragment instead of being silently skipped.
func (r *Resolver) Resolve(fragment string) (string, error) {
	srcPath, srcInfo, srcOK := r.lookup(fragment + core.SourceExt)
	compPath, compInfo, compOK := r.lookup(fragment + core.CompiledExt)

	if !r.compileEnabled {
		switch {
		case compOK:
			return compPath, nil
		case srcOK:
			return srcPath, nil
		default:
			return "", &core.ArtifactIntegrityError{Fragment: fragment}
		}
	}

	if !srcOK {
		if compOK {
			// No source anywhere on the search path: nothing to
			// compile from, the compiled file loads as-is.
			return compPath, nil
		}
		return "", &core.ArtifactIntegrityError{Fragment: fragment}
	}

	stale := !compOK || srcInfo.ModTime().After(compInfo.ModTime())
	if !stale {
		return compPath, nil
	}

	if compOK {
		// A half-written or mismatched compiled file must never be
		// picked up; remove it before compiling.
		if err := os.Remove(compPath); err != nil {
			return "", fmt.Errorf("failed to remove stale artifact %s: %w", compPath, err)
		}
		r.logger.Debug("removed stale artifact", "path", compPath)
	}

	r.logger.Debug("compiling fragment", "source", srcPath)
	if err := r.compiler.Compile(srcPath); err != nil {
		return "", &core.CompileError{Source: srcPath, Err: err}
	}

	return strings.TrimSuffix(srcPath, core.SourceExt) + core.CompiledExt, nil
}
