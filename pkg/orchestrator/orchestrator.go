// Package orchestrator implements the Install Orchestrator: the linear
// state machine that sequences archive reading, metadata parsing,
// classification, privilege checking, scripting, and payload mirroring
// under a single transactional lifecycle with guaranteed cleanup.
package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/windowsadmins/cimipkg/pkg/archive"
	"github.com/windowsadmins/cimipkg/pkg/classify"
	"github.com/windowsadmins/cimipkg/pkg/logging"
	"github.com/windowsadmins/cimipkg/pkg/metadata"
	"github.com/windowsadmins/cimipkg/pkg/mirror"
	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
	"github.com/windowsadmins/cimipkg/pkg/privilege"
	"github.com/windowsadmins/cimipkg/pkg/script"
	"github.com/windowsadmins/cimipkg/pkg/shim"
	"github.com/windowsadmins/cimipkg/pkg/target"
)

// Options carries the invocation's CLI-derived inputs.
type Options struct {
	ArchivePath    string
	TargetSpec     string
	AllowUntrusted bool // accepted, never consulted: no verification pass exists
}

// Outcome is returned on success, describing what happened for the
// CLI's --pkginfo-adjacent reporting. It is also returned alongside a
// pre-script, mirror or post-script failure, carrying whatever script
// transcript was captured before the failure.
type Outcome struct {
	Info            *metadata.PackageInfo
	Mode            classify.Mode
	InstallLocation string
	PreTranscript   []logging.TranscriptEntry
	PostTranscript  []logging.TranscriptEntry
}

// Run drives the state machine in §4.9 to completion. Once the scratch
// directory has been created it is removed before Run returns, on
// failure and on success alike.
func Run(sink *logging.Sink, opts Options) (*Outcome, error) {
	// Start -> OpenArchive
	kind, err := metadata.KindForPath(opts.ArchivePath)
	if err != nil {
		return nil, err
	}

	// OpenArchive failure needs no cleanup: nothing has been extracted yet.
	scratchDir, err := archive.NewScratchDir()
	if err != nil {
		return nil, err
	}

	outcome, runErr := runWithScratch(sink, opts, kind, scratchDir)

	// Cleanup -> Done. Best-effort: log and continue, never mask the
	// primary result.
	if cleanupErr := archive.Remove(scratchDir); cleanupErr != nil {
		sink.Warnf("%v", cleanupErr)
	}

	return outcome, runErr
}

func runWithScratch(sink *logging.Sink, opts Options, kind metadata.Kind, scratchDir string) (*Outcome, error) {
	// Extract
	if err := archive.Extract(opts.ArchivePath, scratchDir); err != nil {
		return nil, err
	}

	// ParseMeta
	info, err := metadata.Parse(kind, opts.ArchivePath, scratchDir)
	if err != nil {
		return nil, err
	}

	// Classify
	root := target.Resolve(opts.TargetSpec)
	result := classify.Classify(info, root)

	outcome := &Outcome{Info: info, Mode: result.Mode, InstallLocation: result.EffectiveInstallLocation}

	// PrivilegeCheck
	if err := checkPrivilege(result, info); err != nil {
		return nil, err
	}

	// PreScript
	preTranscript, err := runPhase(sink, script.PhasePre, info, scratchDir)
	outcome.PreTranscript = preTranscript
	if err != nil {
		return outcome, err
	}

	// Mirror
	if err := runMirror(result, info, scratchDir); err != nil {
		return outcome, err
	}

	// PostScript
	postTranscript, err := runPhase(sink, script.PhasePost, info, scratchDir)
	outcome.PostTranscript = postTranscript
	if err != nil {
		return outcome, err
	}

	return outcome, nil
}

// checkPrivilege implements §4.6: a script of any kind is always
// presumed to require elevation; otherwise elevation is required when
// the resolved install directory is under a system-owned root.
func checkPrivilege(result classify.Result, info *metadata.PackageInfo) error {
	hasAnyScript := info.HasPreNative || info.HasPostNative || info.HasPreForeign || info.HasPostForeign
	needsElevation := hasAnyScript
	reason := "a pre- or post-install script is present"

	if !needsElevation && result.EffectiveInstallLocation != "" && privilege.RequiresElevation(result.EffectiveInstallLocation) {
		needsElevation = true
		reason = result.EffectiveInstallLocation
	}

	if needsElevation && !privilege.IsElevated() {
		return pkgerr.New(pkgerr.NeedsElevation, "administrator privileges are required: %s", reason)
	}
	return nil
}

// runPhase runs whichever of the native/foreign script is present for
// phase, native taking precedence per §4.9. Returns the captured
// transcript (possibly empty when no script is present).
func runPhase(sink *logging.Sink, phase script.Phase, info *metadata.PackageInfo, scratchDir string) ([]logging.TranscriptEntry, error) {
	var (
		hasNative, hasForeign bool
		relPath               string
	)
	switch phase {
	case script.PhasePre:
		hasNative, hasForeign = info.HasPreNative, info.HasPreForeign
		if hasNative {
			relPath = filepath.Join("scripts", "preinstall.ps1")
		} else if hasForeign {
			relPath = filepath.Join("tools", "chocolateyBeforeInstall.ps1")
		}
	case script.PhasePost:
		hasNative, hasForeign = info.HasPostNative, info.HasPostForeign
		if hasNative {
			relPath = filepath.Join("scripts", "postinstall.ps1")
		} else if hasForeign {
			relPath = filepath.Join("tools", "chocolateyInstall.ps1")
		}
	}

	if !hasNative && !hasForeign {
		return nil, nil
	}

	kind := script.KindNative
	if !hasNative {
		kind = script.KindForeign
	}

	var shimPath string
	if kind == script.KindForeign {
		var err error
		shimPath, err = shim.WriteTo(scratchDir)
		if err != nil {
			return nil, err
		}
	}

	vars := script.PackageVars{
		PayloadDir: filepath.Join(scratchDir, "payload"),
	}
	if info.ForeignMeta != nil {
		vars.PackageName = info.ForeignMeta.ID
		vars.PackageVersion = info.ForeignMeta.Version
	}
	vars.PackageFolder = scratchDir

	scriptPath := filepath.Join(scratchDir, relPath)
	result, err := script.Run(sink, kind, phase, scriptPath, scratchDir, shimPath, vars)

	transcript := make([]logging.TranscriptEntry, 0, len(result.Lines))
	for _, line := range result.Lines {
		transcript = append(transcript, logging.TranscriptEntry{
			Script: phase.String(),
			Kind:   kind.String(),
			Stream: "combined",
			Line:   line,
		})
	}

	if err != nil {
		return transcript, err
	}
	return transcript, nil
}

// runMirror performs the Mirror state for copy-type and installer-type
// modes (installer-type has no payload step; the scripts act on the
// scratch-rooted payload in place).
func runMirror(result classify.Result, info *metadata.PackageInfo, scratchDir string) error {
	if result.Mode != classify.CopyType {
		return nil
	}

	if err := ensureDir(result.EffectiveInstallLocation); err != nil {
		return pkgerr.Wrap(pkgerr.BadMetadata, err, "create install directory")
	}

	if info.Kind == metadata.Native {
		return mirror.Mirror(filepath.Join(scratchDir, "payload"), result.EffectiveInstallLocation)
	}
	return mirror.MirrorFiltered(scratchDir, result.EffectiveInstallLocation, metadata.IsExcludedForeignPath)
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
