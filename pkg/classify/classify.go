// Package classify implements the Classifier: a pure function from a
// parsed PackageInfo to an install mode and effective install location.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/windowsadmins/cimipkg/pkg/metadata"
)

// Mode is the install mode derived from PackageInfo per the data model.
type Mode int

const (
	ScriptOnly Mode = iota
	CopyType
	InstallerType
)

func (m Mode) String() string {
	switch m {
	case ScriptOnly:
		return "script-only"
	case CopyType:
		return "copy-type"
	case InstallerType:
		return "installer-type"
	default:
		return "unknown"
	}
}

// installerExecutableSubstrings flags a foreign payload file as
// belonging to an installer-type package when its lowercased filename
// contains any of these words, or when it is an .msi.
var installerExecutableSubstrings = []string{"setup", "installer", "install"}

// vendorInstallerSuffixes are filename suffixes (before the extension)
// that mark a binary as a vendor-authored installer wrapper.
var vendorInstallerSuffixes = []string{"-setup", "_setup", "-install", "_install"}

// fontExtensions identify a payload as predominantly fonts for the
// foreign copy-type default-location heuristic.
var fontExtensions = map[string]bool{
	".ttf": true, ".otf": true, ".ttc": true, ".fon": true,
}

// Result is the Classifier's output.
type Result struct {
	Mode                    Mode
	EffectiveInstallLocation string // joined onto the target root (absolute install_location kept as given); empty for script-only and installer-type
}

// Classify computes (install_mode, effective_install_location) for info,
// given targetRoot already resolved by the Target Resolver.
func Classify(info *metadata.PackageInfo, targetRoot string) Result {
	if len(info.PayloadFiles) == 0 {
		return Result{Mode: ScriptOnly}
	}

	switch info.Kind {
	case metadata.Native:
		loc := ""
		if info.NativeMeta != nil {
			loc = strings.TrimSpace(info.NativeMeta.InstallLocation)
		}
		if loc == "" {
			return Result{Mode: InstallerType}
		}
		return Result{Mode: CopyType, EffectiveInstallLocation: joinRoot(targetRoot, loc)}

	case metadata.Foreign:
		if isInstallerTypePayload(info.PayloadFiles) {
			return Result{Mode: InstallerType}
		}
		return Result{Mode: CopyType, EffectiveInstallLocation: joinRoot(targetRoot, defaultForeignLocation(info))}
	}

	return Result{Mode: ScriptOnly}
}

// joinRoot joins loc onto root, per §4.5: an absolute loc makes root
// effectively ignored, matching macOS installer semantics.
func joinRoot(root, loc string) string {
	if filepath.IsAbs(loc) {
		return filepath.Clean(loc)
	}
	return filepath.Join(root, loc)
}

func isInstallerTypePayload(files []string) bool {
	for _, f := range files {
		lower := strings.ToLower(f)
		if filepath.Ext(lower) == ".msi" {
			return true
		}
		base := strings.TrimSuffix(filepath.Base(lower), filepath.Ext(lower))
		for _, sub := range installerExecutableSubstrings {
			if strings.Contains(base, sub) {
				return true
			}
		}
		for _, suffix := range vendorInstallerSuffixes {
			if strings.HasSuffix(base, suffix) {
				return true
			}
		}
	}
	return false
}

// defaultForeignLocation picks the Fonts directory when the payload is
// predominantly font files, otherwise a product-named directory under
// the system program-files root, per §3.
func defaultForeignLocation(info *metadata.PackageInfo) string {
	if isPredominantlyFonts(info.PayloadFiles) {
		return filepath.Join("Windows", "Fonts")
	}
	name := "Package"
	if info.ForeignMeta != nil {
		if info.ForeignMeta.Title != "" {
			name = info.ForeignMeta.Title
		} else if info.ForeignMeta.ID != "" {
			name = info.ForeignMeta.ID
		}
	}
	return filepath.Join("Program Files", sanitizeDirName(name))
}

func isPredominantlyFonts(files []string) bool {
	if len(files) == 0 {
		return false
	}
	fonts := 0
	for _, f := range files {
		if fontExtensions[strings.ToLower(filepath.Ext(f))] {
			fonts++
		}
	}
	return fonts*2 > len(files)
}

func sanitizeDirName(name string) string {
	r := strings.NewReplacer(`\`, "", "/", "", ":", "", "*", "", "?", "", `"`, "", "<", "", ">", "", "|", "")
	return strings.TrimSpace(r.Replace(name))
}
