package persist

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBackupMissingFile(t *testing.T) {
	bak, err := Backup(filepath.Join(t.TempDir(), "playlist.m3u"))
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}
	if bak != "" {
		t.Errorf("Backup() = %q, want empty for a missing file", bak)
	}
}

func TestBackupNumbersNeverOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.m3u")

	writeFile(t, path, "first")
	bak1, err := Backup(path)
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}
	if bak1 != path+".bak1" {
		t.Errorf("first backup = %q, want %q", bak1, path+".bak1")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original file must be moved aside, not copied")
	}

	writeFile(t, path, "second")
	bak2, err := Backup(path)
	if err != nil {
		t.Fatalf("Backup() error: %v", err)
	}
	if bak2 != path+".bak2" {
		t.Errorf("second backup = %q, want %q", bak2, path+".bak2")
	}

	if readFile(t, bak1) != "first" || readFile(t, bak2) != "second" {
		t.Error("existing backups must keep their content")
	}
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.m3u")

	writeFile(t, path, "original")
	bak, err := Backup(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Restore(bak, path); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if readFile(t, path) != "original" {
		t.Error("restored file must hold the original content")
	}
	if _, err := os.Stat(bak); !os.IsNotExist(err) {
		t.Error("backup file must be gone after restore")
	}
}

func TestWriteOutputCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "playlist.m3u")
	if err := WriteOutput(path, []byte("#EXTM3U\n")); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}
	if readFile(t, path) != "#EXTM3U\n" {
		t.Error("unexpected output content")
	}
}
