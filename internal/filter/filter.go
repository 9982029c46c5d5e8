// Package filter selects and orders fragment candidates from a directory.
package filter

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// Select enumerates the entries directly under dir (non-recursive), keeps
// the base names matching pattern, and applies the artifact-preference rule:
// a source entry is dropped when its compiled sibling is also present, since
// the compiled entry stands in for the logical fragment. When sorted is true
// the surviving names are ordered lexicographically (ascending, byte order);
// otherwise the directory enumeration order is preserved.
//
// An empty directory or a pattern matching nothing yields an empty slice,
// not an error.
func Select(pattern *regexp.Regexp, dir string, sorted bool) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open fragment directory: %w", err)
	}
	defer f.Close()

	// (*os.File).ReadDir does not sort, unlike os.ReadDir. Unsorted passes
	// must see the true enumeration order.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate fragment directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}

	return selectFrom(names, pattern, sorted), nil
}

// selectFrom applies matching, sibling suppression, and ordering to an
// already-enumerated name list. Split out so ordering semantics are testable
// without depending on the host filesystem's enumeration order.
func selectFrom(names []string, pattern *regexp.Regexp, sorted bool) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	selected := make([]string, 0, len(names))
	for _, n := range names {
		if !pattern.MatchString(n) {
			continue
		}
		if strings.HasSuffix(n, core.SourceExt) {
			compiled := strings.TrimSuffix(n, core.SourceExt) + core.CompiledExt
			if present[compiled] {
				continue
			}
		}
		selected = append(selected, n)
	}

	if sorted {
		sort.Strings(selected)
	}
	return selected
}
