package orchestrator

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/windowsadmins/cimipkg/pkg/classify"
	"github.com/windowsadmins/cimipkg/pkg/logging"
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

func TestRunScriptOnlyNativePackage(t *testing.T) {
	dir := t.TempDir()
	pkgPath := filepath.Join(dir, "tool.cimipkg")
	writeZip(t, pkgPath, map[string]string{
		"build-info.yaml": "name: tool\nversion: 1.0.0\n",
	})

	sink := logging.New(logging.LevelError)
	outcome, err := Run(sink, Options{ArchivePath: pkgPath, TargetSpec: "/"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Mode != classify.ScriptOnly {
		t.Errorf("Mode = %v, want ScriptOnly", outcome.Mode)
	}
	if outcome.InstallLocation != "" {
		t.Errorf("InstallLocation = %q, want empty for script-only", outcome.InstallLocation)
	}
}

func TestRunCopyTypeNativePackageMirrorsPayload(t *testing.T) {
	dir := t.TempDir()
	pkgPath := filepath.Join(dir, "tool.cimipkg")
	destRoot := t.TempDir()
	writeZip(t, pkgPath, map[string]string{
		"build-info.yaml":   "name: tool\nversion: 1.0.0\ninstall_location: " + destRoot + "\n",
		"payload/hello.txt": "hi there",
	})

	sink := logging.New(logging.LevelError)
	outcome, err := Run(sink, Options{ArchivePath: pkgPath, TargetSpec: "/"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Mode != classify.CopyType {
		t.Errorf("Mode = %v, want CopyType", outcome.Mode)
	}

	data, err := os.ReadFile(filepath.Join(destRoot, "hello.txt"))
	if err != nil {
		t.Fatalf("mirrored file missing: %v", err)
	}
	if string(data) != "hi there" {
		t.Errorf("mirrored content = %q, want %q", data, "hi there")
	}
}

func TestRunForeignInstallerTypeSkipsMirror(t *testing.T) {
	dir := t.TempDir()
	pkgPath := filepath.Join(dir, "tool.nupkg")
	writeZip(t, pkgPath, map[string]string{
		"tool.nuspec":   nuspecFixture("tool", "2.0.0"),
		"lib/setup.exe": "binary",
	})

	sink := logging.New(logging.LevelError)
	outcome, err := Run(sink, Options{ArchivePath: pkgPath, TargetSpec: "/"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Mode != classify.InstallerType {
		t.Errorf("Mode = %v, want InstallerType", outcome.Mode)
	}
}

func TestRunMissingArchiveIsArchiveNotFound(t *testing.T) {
	sink := logging.New(logging.LevelError)
	_, err := Run(sink, Options{ArchivePath: filepath.Join(t.TempDir(), "missing.cimipkg"), TargetSpec: "/"})
	if err == nil {
		t.Fatal("expected error for missing archive")
	}
	e, ok := pkgerr.As(err)
	if !ok || e.Kind != pkgerr.ArchiveNotFound {
		t.Errorf("expected ArchiveNotFound, got %v", err)
	}
}

func TestRunUnsupportedExtensionIsBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.tar.gz")
	if err := os.WriteFile(path, []byte("not an archive"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sink := logging.New(logging.LevelError)
	_, err := Run(sink, Options{ArchivePath: path, TargetSpec: "/"})
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	e, ok := pkgerr.As(err)
	if !ok || e.Kind != pkgerr.BadInput {
		t.Errorf("expected BadInput, got %v", err)
	}
}

func TestRunAlwaysRemovesScratchDirOnSuccess(t *testing.T) {
	dir := t.TempDir()
	pkgPath := filepath.Join(dir, "tool.cimipkg")
	writeZip(t, pkgPath, map[string]string{
		"build-info.yaml": "name: tool\nversion: 1.0.0\n",
	})

	sink := logging.New(logging.LevelError)
	outcome, err := Run(sink, Options{ArchivePath: pkgPath, TargetSpec: "/"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, statErr := os.Stat(outcome.Info.ScratchDir); !os.IsNotExist(statErr) {
		t.Errorf("expected scratch dir %s to be removed after Run", outcome.Info.ScratchDir)
	}
}

func nuspecFixture(id, version string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://schemas.microsoft.com/packaging/2013/01/nuspec.xsd">
  <metadata>
    <id>` + id + `</id>
    <version>` + version + `</version>
    <title>` + id + `</title>
    <authors>demo</authors>
    <description>a demo package</description>
  </metadata>
</package>`
}
