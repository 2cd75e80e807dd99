package mirror

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMirrorCopiesTreeWithOverwrite(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "a.txt"), []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Pre-existing destination file must be overwritten.
	if err := os.MkdirAll(filepath.Join(dest, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "sub", "a.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Mirror(src, dest); err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "sub", "a.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want %q (overwrite)", data, "new")
	}
}

func TestMirrorFilteredSkipsExcludedSubtrees(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()

	os.MkdirAll(filepath.Join(src, "_rels"), 0o755)
	os.WriteFile(filepath.Join(src, "_rels", "x.rels"), []byte("meta"), 0o644)
	os.WriteFile(filepath.Join(src, "demo.nuspec"), []byte("meta"), 0o644)
	os.MkdirAll(filepath.Join(src, "lib"), 0o755)
	os.WriteFile(filepath.Join(src, "lib", "app.dll"), []byte("binary"), 0o644)

	err := MirrorFiltered(src, dest, func(rel string) bool {
		return rel == "_rels" || rel == "demo.nuspec"
	})
	if err != nil {
		t.Fatalf("MirrorFiltered: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "lib", "app.dll")); err != nil {
		t.Errorf("expected lib/app.dll to be mirrored: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "_rels")); !os.IsNotExist(err) {
		t.Errorf("expected _rels to be excluded")
	}
	if _, err := os.Stat(filepath.Join(dest, "demo.nuspec")); !os.IsNotExist(err) {
		t.Errorf("expected demo.nuspec to be excluded")
	}
}
