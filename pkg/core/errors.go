package core

import "fmt"

// FatalSessionError aborts a whole session: the target directory is missing
// or not a directory after symlink resolution. It is the one failure that
// propagates to the caller instead of becoming a RunLog entry.
type FatalSessionError struct {
	Dir string
	Err error
}

func (e *FatalSessionError) Error() string {
	return fmt.Sprintf("fragment directory %s: %v", e.Dir, e.Err)
}

func (e *FatalSessionError) Unwrap() error { return e.Err }

// ArtifactIntegrityError reports a broken artifact pair: neither a source
// nor a compiled artifact could be found for a fragment that the candidate
// list says exists. Recorded per fragment, never silently skipped.
type ArtifactIntegrityError struct {
	Fragment string
}

func (e *ArtifactIntegrityError) Error() string {
	return fmt.Sprintf("fragment %s: no source or compiled artifact on the search path", e.Fragment)
}

// CompileError wraps a failure reported by the compile callback. The stale
// compiled artifact has already been deleted by then, so the next session
// retries compilation.
type CompileError struct {
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Source, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// LoadError wraps a failure reported by the load callback, preserving the
// underlying message for diagnosis.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
