package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExitCodeDefaultsToTwo(t *testing.T) {
	if got := ExitCode(errors.New("boom")); got != 2 {
		t.Errorf("ExitCode(plain error) = %d; want 2", got)
	}
}

func TestExitCodeFromExitError(t *testing.T) {
	err := &exitError{code: 1, err: errors.New("not formatted")}
	if got := ExitCode(err); got != 1 {
		t.Errorf("ExitCode = %d; want 1", got)
	}
}

func TestExpandPathsPassesPlainFileThrough(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.ttl")
	if err := os.WriteFile(f, []byte("# empty\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := expandPaths([]string{f})
	if err != nil {
		t.Fatalf("expandPaths: %v", err)
	}
	if len(got) != 1 || got[0] != f {
		t.Errorf("expandPaths = %v; want [%s]", got, f)
	}
}

func TestExpandPathsWalksDirectoryForTurtleAndNTriples(t *testing.T) {
	dir := t.TempDir()
	ttl := filepath.Join(dir, "a.ttl")
	nt := filepath.Join(dir, "b.nt")
	other := filepath.Join(dir, "c.txt")
	for _, f := range []string{ttl, nt, other} {
		if err := os.WriteFile(f, []byte("# empty\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	got, err := expandPaths([]string{dir})
	if err != nil {
		t.Fatalf("expandPaths: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expandPaths = %v; want 2 entries (.ttl and .nt only)", got)
	}
}
