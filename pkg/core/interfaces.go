package core

import "time"

// Loader executes one fragment artifact. Implementations receive the
// concrete path picked by artifact resolution (source or compiled) and
// report failure through the returned error; the message is captured
// verbatim in the RunLog. Loaders are invoked synchronously, one fragment
// at a time.
type Loader interface {
	Load(path string) error
}

// Compiler turns a fragment source file into its compiled sibling
// (SourceExt replaced by CompiledExt, next to the source). It is invoked
// only when the staleness rule fires.
type Compiler interface {
	Compile(sourcePath string) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) error

// Load calls f(path).
func (f LoaderFunc) Load(path string) error { return f(path) }

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(sourcePath string) error

// Compile calls f(sourcePath).
func (f CompilerFunc) Compile(sourcePath string) error { return f(sourcePath) }

// Notifier defers a piece of work until application start-up has finished.
// The session controller registers log presentation through it so that the
// presented log also reflects whatever the rest of start-up appended.
type Notifier interface {
	AfterStartup(fn func())
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(fn func())

// AfterStartup calls n(fn).
func (n NotifierFunc) AfterStartup(fn func()) { n(fn) }

// ImmediateNotifier runs registered work synchronously. It is the default
// when the embedding application has no start-up phase to wait for.
type ImmediateNotifier struct{}

// AfterStartup runs fn immediately.
func (ImmediateNotifier) AfterStartup(fn func()) { fn() }

// SessionRecord is one persisted loading session.
type SessionRecord struct {
	ID          string
	Dir         string
	StartedAt   time.Time
	CompletedAt time.Time
	Successes   int
	Failures    int
}

// EntryRecord is one persisted RunLog entry. Seq preserves append order
// within its stream; the success and failure streams are independently
// ordered, mirroring the RunLog itself.
type EntryRecord struct {
	SessionID string
	Seq       int
	Kind      EntryKind
	Name      string
	ElapsedMS int64
	Message   string
}

// EntryKind distinguishes the two RunLog streams in storage.
type EntryKind string

// Entry kinds.
const (
	EntrySuccess EntryKind = "success"
	EntryFailure EntryKind = "failure"
)

// Store persists session history. The in-memory RunLog stays the source of
// truth while a session runs; a session is written once, after it completes.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	SaveSession(rec *SessionRecord, entries []EntryRecord) error
	GetSession(id string) (*SessionRecord, error)
	GetLatestSession() (*SessionRecord, error)
	ListSessions(limit int) ([]*SessionRecord, error)
	GetEntries(sessionID string) ([]EntryRecord, error)
}
