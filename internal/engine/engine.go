// Package engine orchestrates fragment loading: per-pass candidate
// iteration with failure isolation, and the session controller that runs
// the default and platform passes against one directory.
package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/startrc/internal/artifact"
	"github.com/leapstack-labs/startrc/internal/filter"
	"github.com/leapstack-labs/startrc/pkg/core"
)

// Engine runs one pass at a time: filter, resolve, load, record. One
// malformed fragment never prevents the remaining fragments, in this pass
// or subsequent passes, from loading.
type Engine struct {
	resolver *artifact.Resolver
	loader   core.Loader
	logger   *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Resolver locates and (when enabled) recompiles artifacts.
	Resolver *artifact.Resolver

	// Loader executes a resolved artifact.
	Loader core.Loader

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if cfg.Loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{resolver: cfg.Resolver, loader: cfg.Loader, logger: logger}, nil
}

// Resolver returns the engine's artifact resolver.
func (e *Engine) Resolver() *artifact.Resolver { return e.resolver }

// RunPass executes one filter+load cycle over dir and appends the outcome
// of every candidate to log. The directory is registered on the search path
// first; that registration is session-wide, not pass-local. The returned
// error is reserved for directory enumeration failures; per-fragment
// errors never escape.
func (e *Engine) RunPass(pass core.Pass, dir string, log *core.RunLog) error {
	e.resolver.AddPath(dir)

	candidates, err := filter.Select(pass.Pattern, dir, pass.Sorted)
	if err != nil {
		return err
	}

	e.logger.Debug("running pass", "pass", pass.Name, "dir", dir, "candidates", len(candidates), "sorted", pass.Sorted)

	for _, name := range candidates {
		e.loadOne(dir, name, log)
	}
	return nil
}

// loadOne resolves and loads a single candidate, converting any failure
// into a RunLog entry at this candidate's scope only.
func (e *Engine) loadOne(dir, name string, log *core.RunLog) {
	logical := trimArtifactExt(name)

	start := time.Now()
	path, err := e.resolver.Resolve(logical)

	display := path
	if display == "" {
		display = filepath.Join(dir, name)
	}

	if err == nil {
		if loadErr := e.loader.Load(path); loadErr != nil {
			err = &core.LoadError{Path: path, Err: loadErr}
		}
	}

	if err != nil {
		e.logger.Warn("fragment failed", "fragment", display, "error", err)
		log.RecordFailure(display, err.Error())
		return
	}

	elapsed := time.Since(start)
	e.logger.Debug("fragment loaded", "fragment", display, "elapsed", elapsed)
	log.RecordSuccess(display, elapsed)
}

// trimArtifactExt strips the source or compiled extension from a candidate
// base name, yielding the logical fragment name.
func trimArtifactExt(name string) string {
	if strings.HasSuffix(name, core.SourceExt) {
		return strings.TrimSuffix(name, core.SourceExt)
	}
	return strings.TrimSuffix(name, core.CompiledExt)
}
