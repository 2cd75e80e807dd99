// Package privilege implements the Privilege Gate: detecting the
// current administrative state and deciding whether a planned install
// requires elevation.
package privilege

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token carries
// administrator privileges.
func IsElevated() bool {
	token := windows.GetCurrentProcessToken()
	return token.IsElevated()
}

// systemRoots are the allow-list of system-owned roots under which a
// path requires elevation: program-files roots, the Windows directory,
// the program-data directory, and the system drive root itself.
func systemRoots() []string {
	roots := []string{}
	add := func(v string) {
		if v != "" {
			roots = append(roots, strings.ToLower(filepathClean(v)))
		}
	}
	add(os.Getenv("ProgramFiles"))
	add(os.Getenv("ProgramFiles(x86)"))
	add(os.Getenv("ProgramW6432"))
	add(os.Getenv("windir"))
	add(os.Getenv("ProgramData"))
	if drive := os.Getenv("SystemDrive"); drive != "" {
		add(drive + `\`)
	}
	return roots
}

func filepathClean(p string) string {
	p = strings.TrimRight(p, `\/`)
	return p
}

// RequiresElevation reports whether installDir is, or is nested under,
// one of the system-owned roots.
func RequiresElevation(installDir string) bool {
	target := strings.ToLower(filepathClean(installDir))
	for _, root := range systemRoots() {
		if target == root || strings.HasPrefix(target, root+`\`) {
			return true
		}
	}
	return false
}
