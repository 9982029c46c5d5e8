// Package platform probes the operating environment once per process and
// distills it into core.Facts. It is the only package that inspects the OS;
// the loading core stays pure with respect to the environment it runs on.
package platform

import (
	"os"
	"runtime"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Detect probes the current platform. Facts are computed once at session
// start and never re-evaluated per file.
//
// The Meadow, Carbon, and Cocoa variant facts describe builds of the
// embedding application, not the OS; Detect cannot observe them and leaves
// them false. Embedders that know their build flavor set those fields
// themselves before starting a session.
func Detect() core.Facts {
	f := core.Facts{}
	switch runtime.GOOS {
	case "windows":
		f.Windows = true
	case "darwin":
		f.Darwin = true
	case "linux":
		f.Linux = true
	case "freebsd", "openbsd", "netbsd", "dragonfly":
		f.BSD = true
	}
	f.Display = displayAvailable(f)
	return f
}

// displayAvailable reports whether a graphical display can be assumed.
// Windows and Darwin sessions always have one; elsewhere the X11 and
// Wayland environment variables decide.
func displayAvailable(f core.Facts) bool {
	if f.Windows || f.Darwin {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
