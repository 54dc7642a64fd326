package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	. "github.com/chrispritchard/torrentmeta/internal/torrent_files"
)

// Helper to create a file with the given contents in a temp dir
func setupFile(t *testing.T, name string, content []byte, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriteDescriptor_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.torrent")

	if err := WriteDescriptor(path, []byte("de"), Options{Backup: true}); err != nil {
		t.Fatalf("WriteDescriptor failed: %v", err)
	}

	got, err := ReadDescriptor(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "de" {
		t.Errorf("got %q", got)
	}
	if _, err := os.Stat(BackupPath(path)); !os.IsNotExist(err) {
		t.Errorf("backup created for a file that did not exist: %v", err)
	}
}

func TestWriteDescriptor_KeepsMode(t *testing.T) {
	path := setupFile(t, "a.torrent", []byte("le"), 0600)

	if err := WriteDescriptor(path, []byte("de"), Options{}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestWriteDescriptor_NoTempFilesLeft(t *testing.T) {
	path := setupFile(t, "a.torrent", []byte("le"), 0644)

	if err := WriteDescriptor(path, []byte("de"), Options{}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only a.torrent", names)
	}
}

func TestBackupAndRestore(t *testing.T) {
	original := []byte("d8:announcel3:oldee")
	path := setupFile(t, "a.torrent", original, 0644)

	if err := WriteDescriptor(path, []byte("d8:announcel3:newee"), Options{Backup: true}); err != nil {
		t.Fatal(err)
	}

	compressed, err := os.ReadFile(BackupPath(path))
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(compressed) == string(original) {
		t.Error("backup stored uncompressed")
	}

	if err := RestoreBackup(path); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	got, _ := ReadDescriptor(path)
	if string(got) != string(original) {
		t.Errorf("restored %q, want %q", got, original)
	}
}

func TestRestoreBackup_Missing(t *testing.T) {
	path := setupFile(t, "a.torrent", []byte("de"), 0644)
	if err := RestoreBackup(path); err == nil {
		t.Error("RestoreBackup without a backup should fail")
	}
}

func TestReadDescriptor_Missing(t *testing.T) {
	if _, err := ReadDescriptor(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v", err)
	}
}

func TestVerifyFiles(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "cd1"), 0755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(base, "cd1", "01.flac"), make([]byte, 10), 0644)
	os.WriteFile(filepath.Join(base, "short.bin"), make([]byte, 2), 0644)

	files := []TorrentFile{
		{Path: "cd1/01.flac", Size: 10},
		{Path: "short.bin", Size: 5},
		{Path: "missing.txt", Size: 1},
		{Path: "cd1", Size: 0},
		{Path: "../escape", Size: 1},
	}

	results := VerifyFiles(base, files)
	if len(results) != len(files) {
		t.Fatalf("got %d results", len(results))
	}

	if !results[0].OK() {
		t.Errorf("complete file reported %+v", results[0])
	}
	if results[1].OK() || !results[1].Exists || results[1].Actual != 2 {
		t.Errorf("short file reported %+v", results[1])
	}
	if results[2].OK() || results[2].Exists || results[2].Err != nil {
		t.Errorf("missing file reported %+v", results[2])
	}
	if results[3].Err == nil {
		t.Errorf("directory not flagged: %+v", results[3])
	}
	if results[4].Err == nil || results[4].FullPath != "" {
		t.Errorf("escaping path not rejected: %+v", results[4])
	}
}
