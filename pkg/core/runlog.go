package core

import (
	"fmt"
	"strings"
	"time"
)

// SuccessEntry records one fragment that loaded, with the time it took.
type SuccessEntry struct {
	// Name is the fully resolved path that was loaded, not the bare
	// fragment name, so the log pinpoints which artifact was picked.
	Name string

	// Elapsed is the wall-clock time spent resolving and loading.
	Elapsed time.Duration
}

// FailureEntry records one fragment that failed to load.
type FailureEntry struct {
	Name    string
	Message string
}

// RunLog is the append-only ledger of one loading session. Successes and
// failures are independent streams; within each stream the order is the
// load order, oldest first.
//
// A RunLog is owned by exactly one session and is not safe for concurrent
// use. Callers running sessions from multiple goroutines must synchronize
// externally.
type RunLog struct {
	successes []SuccessEntry
	failures  []FailureEntry
}

// NewRunLog returns an empty ledger.
func NewRunLog() *RunLog {
	return &RunLog{}
}

// RecordSuccess appends to the success stream. Entries are never
// deduplicated; a fragment loaded twice appears twice.
func (l *RunLog) RecordSuccess(name string, elapsed time.Duration) {
	l.successes = append(l.successes, SuccessEntry{Name: name, Elapsed: elapsed})
}

// RecordFailure appends to the failure stream.
func (l *RunLog) RecordFailure(name, message string) {
	l.failures = append(l.failures, FailureEntry{Name: name, Message: message})
}

// Successes returns a copy of the success stream in append order.
func (l *RunLog) Successes() []SuccessEntry {
	out := make([]SuccessEntry, len(l.successes))
	copy(out, l.successes)
	return out
}

// Failures returns a copy of the failure stream in append order.
func (l *RunLog) Failures() []FailureEntry {
	out := make([]FailureEntry, len(l.failures))
	copy(out, l.failures)
	return out
}

// HasFailures reports whether any fragment failed this session.
func (l *RunLog) HasFailures() bool {
	return len(l.failures) > 0
}

// RenderSuccessLog returns the success stream as newline-joined text in
// chronological order.
func (l *RunLog) RenderSuccessLog() string {
	lines := make([]string, 0, len(l.successes))
	for _, e := range l.successes {
		lines = append(lines, fmt.Sprintf("loaded %s (%s)", e.Name, e.Elapsed))
	}
	return strings.Join(lines, "\n")
}

// RenderFailureLog returns the failure stream as newline-joined text in
// chronological order.
func (l *RunLog) RenderFailureLog() string {
	lines := make([]string, 0, len(l.failures))
	for _, e := range l.failures {
		lines = append(lines, fmt.Sprintf("error: %s: %s", e.Name, e.Message))
	}
	return strings.Join(lines, "\n")
}
