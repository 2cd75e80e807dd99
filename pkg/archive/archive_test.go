package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

func TestExtractWritesEntries(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{
		"build-info.yaml": "name: demo\n",
		"payload/hello.txt": "hi",
	})

	scratch, err := NewScratchDir()
	if err != nil {
		t.Fatalf("NewScratchDir: %v", err)
	}
	defer os.RemoveAll(scratch)

	if err := Extract(zipPath, scratch); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(scratch, "payload", "hello.txt"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("extracted content = %q, want %q", data, "hi")
	}
}

func TestExtractRejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeZip(t, zipPath, map[string]string{
		"../../escape.txt": "pwned",
	})

	scratch, err := NewScratchDir()
	if err != nil {
		t.Fatalf("NewScratchDir: %v", err)
	}
	defer os.RemoveAll(scratch)

	err = Extract(zipPath, scratch)
	if err == nil {
		t.Fatal("expected Extract to reject a zip-slip entry")
	}
	e, ok := pkgerr.As(err)
	if !ok || e.Kind != pkgerr.MalformedEntry {
		t.Errorf("expected MalformedEntry, got %v", err)
	}
}

func TestNewScratchDirUnique(t *testing.T) {
	a, err := NewScratchDir()
	if err != nil {
		t.Fatalf("NewScratchDir: %v", err)
	}
	defer os.RemoveAll(a)
	b, err := NewScratchDir()
	if err != nil {
		t.Fatalf("NewScratchDir: %v", err)
	}
	defer os.RemoveAll(b)
	if a == b {
		t.Errorf("expected distinct scratch directories, got %s twice", a)
	}
}
