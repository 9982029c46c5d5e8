package core

import "regexp"

// Artifact extensions. A fragment is written as a source file and may have a
// byte-compiled sibling that loads faster; both spellings of the same logical
// fragment share a base name.
const (
	// SourceExt is the extension of a fragment source file.
	SourceExt = ".star"

	// CompiledExt is the extension of a compiled fragment artifact.
	CompiledExt = ".starc"
)

// Pass describes one filter+load cycle over a directory: which base names
// qualify and whether the surviving candidates are sorted before loading.
// Passes are immutable once a session starts.
type Pass struct {
	// Name identifies the pass in logs ("default", "windows", ...).
	Name string

	// Pattern is matched against each directory entry's base name.
	Pattern *regexp.Regexp

	// Sorted selects lexicographic candidate order. When false the
	// directory enumeration order is preserved.
	Sorted bool
}

// Visibility controls whether the session log is presented after a run.
type Visibility string

// Log visibility policies.
const (
	// VisibilityAlways presents the log after every session.
	VisibilityAlways Visibility = "always"

	// VisibilityErrorsOnly presents the log only when the failure
	// stream is non-empty.
	VisibilityErrorsOnly Visibility = "errorsOnly"

	// VisibilityNever suppresses log presentation entirely.
	VisibilityNever Visibility = "never"
)

// Valid reports whether v is a recognized visibility policy.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityAlways, VisibilityErrorsOnly, VisibilityNever:
		return true
	}
	return false
}

// Facts captures the platform properties a session cares about. They are
// probed once by an external collaborator (internal/platform) and passed in;
// the core never inspects the operating environment itself.
type Facts struct {
	// Windows is true on any Windows build.
	Windows bool

	// Meadow is true for the Meadow variant on Windows.
	Meadow bool

	// Darwin is true on any Darwin-family system.
	Darwin bool

	// Carbon is true for a Carbon-style Darwin build.
	Carbon bool

	// Cocoa is true for a Cocoa-style Darwin build.
	Cocoa bool

	// Linux is true on Linux.
	Linux bool

	// BSD is true on the BSD family.
	BSD bool

	// Display is true when a graphical display is available.
	Display bool
}

// CocoaPassApplies reports whether the cocoa platform pass fires: either a
// Cocoa-style build, or any Darwin system that is not a Carbon build and has
// no graphical display. The second arm is intentionally broad; it is kept
// verbatim from the loading convention this loader implements rather than
// narrowed to what a Cocoa build strictly means.
func (f Facts) CocoaPassApplies() bool {
	return f.Cocoa || (f.Darwin && !f.Carbon && !f.Display)
}

// PlatformPatterns maps each platform fact to the pattern its pass uses.
// A nil pattern disables that pass.
type PlatformPatterns struct {
	Windows *regexp.Regexp
	Meadow  *regexp.Regexp
	Carbon  *regexp.Regexp
	Cocoa   *regexp.Regexp
	Linux   *regexp.Regexp
	BSD     *regexp.Regexp
	NoWin   *regexp.Regexp
}

// DefaultPattern matches the conventional fragment naming scheme: base names
// starting with two ASCII digits (00_util.star, 99_keys.star, ...).
var DefaultPattern = regexp.MustCompile(`^[0-9][0-9]`)

// DefaultPlatformPatterns returns the conventional prefix patterns for the
// platform passes.
func DefaultPlatformPatterns() PlatformPatterns {
	return PlatformPatterns{
		Windows: regexp.MustCompile(`^windows-`),
		Meadow:  regexp.MustCompile(`^meadow-`),
		Carbon:  regexp.MustCompile(`^carbon-emacs-`),
		Cocoa:   regexp.MustCompile(`^cocoa-emacs-`),
		Linux:   regexp.MustCompile(`^linux-`),
		BSD:     regexp.MustCompile(`^bsd-`),
		NoWin:   regexp.MustCompile(`^nw-`),
	}
}

// Passes computes the platform passes that apply for the given facts, in
// their fixed evaluation order. Each fact independently gates zero or one
// pass; platform passes are never sorted.
func (p PlatformPatterns) Passes(f Facts) []Pass {
	var passes []Pass
	add := func(name string, on bool, re *regexp.Regexp) {
		if on && re != nil {
			passes = append(passes, Pass{Name: name, Pattern: re})
		}
	}
	add("windows", f.Windows, p.Windows)
	add("meadow", f.Windows && f.Meadow, p.Meadow)
	add("carbon", f.Darwin && f.Carbon, p.Carbon)
	add("cocoa", f.CocoaPassApplies(), p.Cocoa)
	add("linux", f.Linux, p.Linux)
	add("bsd", f.BSD, p.BSD)
	add("nw", !f.Display, p.NoWin)
	return passes
}
