package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills path with size bytes of a repeating pattern, creating
// parent directories. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteAudioFiles creates small placeholder files at each path relative to
// root and returns their absolute paths in argument order.
func WriteAudioFiles(t testing.TB, root string, rel ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(rel))
	for _, name := range rel {
		path := filepath.Join(root, filepath.FromSlash(name))
		WriteFile(t, path, 44)
		paths = append(paths, path)
	}
	return paths
}

// WritePreset writes a minimal standalone FX chain to dir/name.RfxChain and
// returns its path.
func WritePreset(t testing.TB, dir, name string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name+".RfxChain")
	content := "<REAPER_FXCHAIN\n  <VST \"VST: ReaEQ (Cockos)\" reaeq.dll 0 \"\" 1919247729\n  >\n>\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset %s: %v", path, err)
	}
	return path
}
