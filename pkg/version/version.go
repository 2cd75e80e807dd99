// Package version reports build and runtime version information for cimipkg.
package version

import (
	"fmt"
	"strings"
	"time"
)

// buildTimestamp is set at build time via -ldflags to a YYYY.MM.DD.HHMM
// stamp; when unset (e.g. a local, unflagged build) it falls back to the
// process start time in the same format, per the --vers contract in §6.
var buildTimestamp = ""

var appName = "cimipkg"

// Timestamp returns the version string printed by --vers.
func Timestamp() string {
	if buildTimestamp != "" {
		return buildTimestamp
	}
	return time.Now().Format("2006.01.02.1504")
}

// Print writes "<appName> <timestamp>\n" to stdout, matching --vers.
func Print() {
	fmt.Printf("%s %s\n", appName, Timestamp())
}

// PrintVersion writes only the timestamp.
func PrintVersion() {
	fmt.Println(Timestamp())
}

// Normalize trims trailing ".0" segments from a version string, e.g.
// "1.2.0.0" -> "1.2", used before printing --query version.
func Normalize(v string) string {
	parts := strings.Split(v, ".")
	for len(parts) > 1 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
