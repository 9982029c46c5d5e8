package filter

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x = 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSelectFrom_Ordering(t *testing.T) {
	names := []string{"b_x.star", "a_y.star", "c_z.star"}
	pat := regexp.MustCompile(`^[abc]_`)

	got := selectFrom(names, pat, true)
	want := []string{"a_y.star", "b_x.star", "c_z.star"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted selection = %v, want %v", got, want)
	}

	got = selectFrom(names, pat, false)
	if !reflect.DeepEqual(got, names) {
		t.Errorf("unsorted selection = %v, want enumeration order %v", got, names)
	}
}

func TestSelectFrom_CompiledSiblingSuppressesSource(t *testing.T) {
	names := []string{"00_util.star", "00_util.starc", "10_keys.star"}
	pat := regexp.MustCompile(`^[0-9][0-9]`)

	got := selectFrom(names, pat, true)
	want := []string{"00_util.starc", "10_keys.star"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %v, want %v", got, want)
	}
}

func TestSelectFrom_CompiledAlwaysAccepted(t *testing.T) {
	names := []string{"00_only.starc"}
	pat := regexp.MustCompile(`^[0-9][0-9]`)

	got := selectFrom(names, pat, false)
	if !reflect.DeepEqual(got, names) {
		t.Errorf("lone compiled entry rejected: %v", got)
	}
}

func TestSelect_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "10_b.star", "00_a.star", "windows-keys.star", "README.md")
	if err := os.Mkdir(filepath.Join(dir, "55_subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Select(regexp.MustCompile(`^[0-9][0-9]`), dir, true)
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	want := []string{"00_a.star", "10_b.star"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Select() = %v, want %v", got, want)
	}
}

func TestSelect_EmptyDirectory(t *testing.T) {
	got, err := Select(regexp.MustCompile(`^[0-9][0-9]`), t.TempDir(), true)
	if err != nil {
		t.Fatalf("Select() on empty directory failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty selection, got %v", got)
	}
}

func TestSelect_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "00_a.star")

	got, err := Select(regexp.MustCompile(`^windows-`), dir, false)
	if err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestSelect_MissingDirectory(t *testing.T) {
	_, err := Select(regexp.MustCompile(`.`), filepath.Join(t.TempDir(), "absent"), false)
	if err == nil {
		t.Fatal("Select() on a missing directory should fail")
	}
}
