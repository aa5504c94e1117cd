package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FakeReaper writes an executable /bin/sh script named "reaper" into dir and
// returns its path. body runs after the shebang; "$@" holds the converter
// arguments, so the descriptor path is the last one. Tests using it are
// skipped on Windows.
func FakeReaper(t testing.TB, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake reaper requires /bin/sh")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, "reaper")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake reaper: %v", err)
	}
	return path
}

// DescriptorArg is a shell snippet that stores the last argument in $job.
const DescriptorArg = `for job; do :; done`
