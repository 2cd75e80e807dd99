package classify

import (
	"path/filepath"
	"testing"

	"github.com/windowsadmins/cimipkg/pkg/metadata"
)

func TestClassifyScriptOnly(t *testing.T) {
	info := &metadata.PackageInfo{Kind: metadata.Native, NativeMeta: &metadata.NativeMeta{}}
	got := Classify(info, `C:\`)
	if got.Mode != ScriptOnly {
		t.Errorf("expected ScriptOnly, got %v", got.Mode)
	}
}

func TestClassifyNativeInstallerType(t *testing.T) {
	info := &metadata.PackageInfo{
		Kind:         metadata.Native,
		NativeMeta:   &metadata.NativeMeta{InstallLocation: ""},
		PayloadFiles: []string{"hello.txt"},
	}
	got := Classify(info, `C:\`)
	if got.Mode != InstallerType {
		t.Errorf("expected InstallerType for blank install_location, got %v", got.Mode)
	}
}

func TestClassifyNativeCopyType(t *testing.T) {
	info := &metadata.PackageInfo{
		Kind:         metadata.Native,
		NativeMeta:   &metadata.NativeMeta{InstallLocation: `Apps\Demo`},
		PayloadFiles: []string{"hello.txt"},
	}
	got := Classify(info, `C:\`)
	if got.Mode != CopyType {
		t.Errorf("expected CopyType, got %v", got.Mode)
	}
	want := filepath.Join(`C:\`, `Apps\Demo`)
	if got.EffectiveInstallLocation != want {
		t.Errorf("EffectiveInstallLocation = %q, want %q", got.EffectiveInstallLocation, want)
	}
}

func TestClassifyNativeAbsoluteInstallLocationIgnoresRoot(t *testing.T) {
	info := &metadata.PackageInfo{
		Kind:         metadata.Native,
		NativeMeta:   &metadata.NativeMeta{InstallLocation: `D:\Elsewhere`},
		PayloadFiles: []string{"hello.txt"},
	}
	got := Classify(info, `C:\`)
	if got.EffectiveInstallLocation != `D:\Elsewhere` {
		t.Errorf("expected absolute install_location to ignore root, got %q", got.EffectiveInstallLocation)
	}
}

func TestClassifyForeignInstallerHeuristic(t *testing.T) {
	cases := []struct {
		name  string
		files []string
		want  Mode
	}{
		{"msi", []string{"lib/app.msi"}, InstallerType},
		{"setup-word", []string{"lib/Setup_v3.exe"}, InstallerType},
		{"plain-dll", []string{"lib/net45/demo.dll"}, CopyType},
	}
	for _, c := range cases {
		info := &metadata.PackageInfo{
			Kind:         metadata.Foreign,
			ForeignMeta:  &metadata.ForeignMeta{ID: "demo"},
			PayloadFiles: c.files,
		}
		got := Classify(info, `C:\`)
		if got.Mode != c.want {
			t.Errorf("%s: Classify mode = %v, want %v", c.name, got.Mode, c.want)
		}
	}
}

func TestClassifyForeignFontsDefaultLocation(t *testing.T) {
	info := &metadata.PackageInfo{
		Kind:         metadata.Foreign,
		ForeignMeta:  &metadata.ForeignMeta{ID: "demo.fonts"},
		PayloadFiles: []string{"a.ttf", "b.ttf", "readme.txt"},
	}
	got := Classify(info, `C:\`)
	if got.Mode != CopyType {
		t.Fatalf("expected CopyType, got %v", got.Mode)
	}
	want := filepath.Join(`C:\`, "Windows", "Fonts")
	if got.EffectiveInstallLocation != want {
		t.Errorf("EffectiveInstallLocation = %q, want %q", got.EffectiveInstallLocation, want)
	}
}
