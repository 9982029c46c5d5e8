package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Session runs the full pass sequence against one target directory: the
// default pass (sorted), then one unsorted pass per applicable platform
// fact, then the log-visibility decision. Sessions are strictly sequential;
// callers must not run sessions sharing a resolver concurrently.
type Session struct {
	dir        string
	facts      core.Facts
	defaultPat *regexp.Regexp
	platform   core.PlatformPatterns
	visibility core.Visibility
	engine     *Engine
	notifier   core.Notifier
	present    func(string)
	logger     *slog.Logger

	runLog *core.RunLog
}

// SessionConfig holds session configuration.
type SessionConfig struct {
	// Dir is the fragment directory. Symbolic links are resolved once,
	// up front.
	Dir string

	// Facts are the platform facts, probed once by the caller.
	Facts core.Facts

	// DefaultPattern overrides core.DefaultPattern when non-nil.
	DefaultPattern *regexp.Regexp

	// PlatformPatterns overrides the default pass table when non-nil.
	PlatformPatterns *core.PlatformPatterns

	// Visibility is the log presentation policy (default: always).
	Visibility core.Visibility

	// Engine runs the individual passes.
	Engine *Engine

	// Notifier defers log presentation until start-up completes
	// (default: present immediately).
	Notifier core.Notifier

	// Present receives the rendered log when the visibility policy
	// fires. Nil disables presentation regardless of policy.
	Present func(log string)

	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// NewSession validates the configuration and creates a session.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("fragment directory is required")
	}

	visibility := cfg.Visibility
	if visibility == "" {
		visibility = core.VisibilityAlways
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("unknown log visibility %q", visibility)
	}

	defaultPat := cfg.DefaultPattern
	if defaultPat == nil {
		defaultPat = core.DefaultPattern
	}

	platform := core.DefaultPlatformPatterns()
	if cfg.PlatformPatterns != nil {
		platform = *cfg.PlatformPatterns
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = core.ImmediateNotifier{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Session{
		dir:        cfg.Dir,
		facts:      cfg.Facts,
		defaultPat: defaultPat,
		platform:   platform,
		visibility: visibility,
		engine:     cfg.Engine,
		notifier:   notifier,
		present:    cfg.Present,
		logger:     logger,
	}, nil
}

// Run executes the session and returns its RunLog. The only error returned
// is the fatal precondition failure (directory missing or not a directory);
// everything else is isolated per fragment inside the log.
func (s *Session) Run() (*core.RunLog, error) {
	dir, err := filepath.EvalSymlinks(s.dir)
	if err != nil {
		return nil, &core.FatalSessionError{Dir: s.dir, Err: err}
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &core.FatalSessionError{Dir: s.dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &core.FatalSessionError{Dir: s.dir, Err: fmt.Errorf("not a directory")}
	}

	s.logger.Info("starting session", "dir", dir)

	runLog := core.NewRunLog()
	s.runLog = runLog

	// The default pass is always sorted: naming-convention order is the
	// dependency order.
	defaultPass := core.Pass{Name: "default", Pattern: s.defaultPat, Sorted: true}
	if err := s.engine.RunPass(defaultPass, dir, runLog); err != nil {
		return nil, &core.FatalSessionError{Dir: s.dir, Err: err}
	}

	// Platform passes are computed once from the facts, before any of
	// them runs, and load in enumeration order.
	for _, pass := range s.platform.Passes(s.facts) {
		if err := s.engine.RunPass(pass, dir, runLog); err != nil {
			return nil, &core.FatalSessionError{Dir: s.dir, Err: err}
		}
	}

	s.logger.Info("session complete",
		"successes", len(runLog.Successes()),
		"failures", len(runLog.Failures()))

	s.schedulePresentation(runLog)
	return runLog, nil
}

// schedulePresentation applies the visibility policy. Presentation is
// registered with the notifier rather than executed inline so that the log
// a user sees also reflects late-arriving start-up work.
func (s *Session) schedulePresentation(runLog *core.RunLog) {
	if s.present == nil || s.visibility == core.VisibilityNever {
		return
	}
	if s.visibility == core.VisibilityErrorsOnly && !runLog.HasFailures() {
		return
	}
	s.notifier.AfterStartup(func() {
		s.present(s.RenderLog(runLog))
	})
}

// RenderLog produces the full presentation text: the error log, the success
// log, and the current search-path list, concatenated.
func (s *Session) RenderLog(runLog *core.RunLog) string {
	var b strings.Builder
	b.WriteString("----- error log -----\n")
	b.WriteString(runLog.RenderFailureLog())
	b.WriteString("\n----- load log -----\n")
	b.WriteString(runLog.RenderSuccessLog())
	b.WriteString("\n----- search path -----\n")
	b.WriteString(strings.Join(s.engine.Resolver().Paths(), "\n"))
	b.WriteString("\n")
	return b.String()
}

// RunLog returns the ledger of the last Run, or nil before the first run.
func (s *Session) RunLog() *core.RunLog { return s.runLog }
