package privilege

import (
	"os"
	"testing"
)

func TestRequiresElevationUnderProgramFiles(t *testing.T) {
	os.Setenv("ProgramFiles", `C:\Program Files`)
	if !RequiresElevation(`C:\Program Files\Foo`) {
		t.Errorf("expected path under Program Files to require elevation")
	}
}

func TestRequiresElevationUnderSystemDrive(t *testing.T) {
	os.Setenv("SystemDrive", "C:")
	if !RequiresElevation(`C:\`) {
		t.Errorf("expected system drive root to require elevation")
	}
}

func TestRequiresElevationFalseForUserPath(t *testing.T) {
	os.Setenv("ProgramFiles", `C:\Program Files`)
	os.Setenv("ProgramFiles(x86)", `C:\Program Files (x86)`)
	os.Setenv("ProgramW6432", `C:\Program Files`)
	os.Setenv("windir", `C:\Windows`)
	os.Setenv("ProgramData", `C:\ProgramData`)
	os.Setenv("SystemDrive", "D:")
	if RequiresElevation(`C:\Users\demo\AppData\Local\Demo`) {
		t.Errorf("expected a user-owned path to not require elevation")
	}
}
