package state

import (
	"time"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Records converts a completed session's RunLog into persistable records.
// Each stream keeps its own chronological sequence.
func Records(sessionID, dir string, started, completed time.Time, runLog *core.RunLog) (*core.SessionRecord, []core.EntryRecord) {
	successes := runLog.Successes()
	failures := runLog.Failures()

	rec := &core.SessionRecord{
		ID:          sessionID,
		Dir:         dir,
		StartedAt:   started,
		CompletedAt: completed,
		Successes:   len(successes),
		Failures:    len(failures),
	}

	entries := make([]core.EntryRecord, 0, len(successes)+len(failures))
	for i, e := range successes {
		entries = append(entries, core.EntryRecord{
			SessionID: sessionID,
			Seq:       i,
			Kind:      core.EntrySuccess,
			Name:      e.Name,
			ElapsedMS: e.Elapsed.Milliseconds(),
		})
	}
	for i, e := range failures {
		entries = append(entries, core.EntryRecord{
			SessionID: sessionID,
			Seq:       i,
			Kind:      core.EntryFailure,
			Name:      e.Name,
			Message:   e.Message,
		})
	}
	return rec, entries
}
