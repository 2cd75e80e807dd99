// Package target implements the Target Resolver: translating a --target
// spec string into an absolute root directory, per §4.5's table. The
// resolver only ever produces the root; joining it with a package's
// install_location is the Classifier's job.
package target

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve translates spec into an absolute root directory.
//
//   - "/" or "\" resolves to the system root drive (e.g. C:\).
//   - "CurrentUserHomeDirectory" resolves to the current user's profile
//     directory.
//   - "/Volumes/<name>" resolves to "<name>:\", matching the macOS
//     convention the tool otherwise mimics.
//   - A single ASCII letter resolves to that letter uppercased + ":\".
//   - Anything else is treated as an absolute filesystem path and
//     normalized.
func Resolve(spec string) string {
	switch {
	case spec == "/" || spec == `\`:
		return systemDrive()
	case spec == "CurrentUserHomeDirectory":
		return homeDirectory()
	case isVolumesPath(spec):
		return volumeName(spec) + `:\`
	case isSingleLetter(spec):
		return strings.ToUpper(spec) + `:\`
	default:
		return filepath.Clean(spec)
	}
}

func systemDrive() string {
	if drive := os.Getenv("SystemDrive"); drive != "" {
		return drive + `\`
	}
	return `C:\`
}

func homeDirectory() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	if profile := os.Getenv("USERPROFILE"); profile != "" {
		return profile
	}
	return `C:\Users\Default`
}

func isVolumesPath(spec string) bool {
	normalized := strings.ReplaceAll(spec, `\`, "/")
	return strings.HasPrefix(normalized, "/Volumes/") && len(normalized) > len("/Volumes/")
}

func volumeName(spec string) string {
	normalized := strings.ReplaceAll(spec, `\`, "/")
	name := strings.TrimPrefix(normalized, "/Volumes/")
	return strings.Trim(name, "/")
}

func isSingleLetter(spec string) bool {
	if len(spec) != 1 {
		return false
	}
	c := spec[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
