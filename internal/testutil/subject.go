// Package testutil provides fixtures shared by the harness tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Subject writes an executable POSIX shell script with the given body into
// a fresh temporary directory and returns its path.
//
// The script stands in for a philosophers binary: it receives the test
// case arguments as "$@" and whatever it echoes is the captured output.
func Subject(t testing.TB, body string) string {
	t.Helper()
	return write(t, "subject.sh", "#!/bin/sh\n"+body+"\n", 0o755)
}

// PrintingSubject returns a subject that prints output verbatim and exits 0.
func PrintingSubject(t testing.TB, output string) string {
	t.Helper()
	path := write(t, "output.txt", output, 0o644)
	return Subject(t, "cat '"+path+"'")
}

// NonExecutable writes a regular file without any execute bit.
func NonExecutable(t testing.TB) string {
	t.Helper()
	return write(t, "plain.txt", "not a program\n", 0o644)
}

func write(t testing.TB, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	// WriteFile applies the umask; make the mode exact.
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("failed to chmod %s: %v", name, err)
	}
	return path
}
