// Package shim embeds the Compatibility Shim: a PowerShell script
// providing substitute implementations of the foreign ecosystem's most
// common helper routines, written to a temp file and dot-sourced ahead
// of a foreign script.
package shim

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
)

//go:embed compat.ps1
var script string

// Script returns the embedded shim source, for callers that want to
// inspect or test it without touching the filesystem.
func Script() string { return script }

// WriteTo materializes the shim into dir (ordinarily the scratch
// directory) and returns its path, ready to be dot-sourced by the
// Script Runner.
func WriteTo(dir string) (string, error) {
	path := filepath.Join(dir, "cimipkg-compat.ps1")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", pkgerr.Wrap(pkgerr.ScriptFailed, err, "write compatibility shim")
	}
	return path, nil
}
