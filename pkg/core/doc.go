// Package core defines the shared language of the startrc system.
//
// This package contains:
//   - Fragment vocabulary (artifact extensions, passes, platform facts)
//   - The RunLog ledger and its entry types
//   - Service interfaces (Loader, Compiler, Store, Notifier)
//   - The error taxonomy for session and per-fragment failures
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
