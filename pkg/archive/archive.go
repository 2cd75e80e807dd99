// Package archive implements the Archive Reader: it validates a zip
// archive's central directory, then extracts its entries into a fresh
// scratch directory, rejecting any entry that would escape that
// directory (the standard zip-slip defense).
package archive

import (
	"archive/zip"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
)

// NewScratchDir creates a freshly-named, non-colliding directory under
// the OS temp root to hold one invocation's extracted archive.
func NewScratchDir() (string, error) {
	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generate scratch token: %w", err)
	}
	dir := filepath.Join(os.TempDir(), "cimipkg-"+hex.EncodeToString(token))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, nil
}

// Extract opens archivePath, validates its central directory, and
// writes every entry under scratchDir. Entries whose normalized path
// would escape scratchDir, or that are symbolic links, are rejected.
func Extract(archivePath, scratchDir string) error {
	info, statErr := os.Stat(archivePath)
	if statErr != nil {
		return pkgerr.Wrap(pkgerr.ArchiveNotFound, statErr, "archive not found: %s", archivePath)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "archive %s (%d bytes): central directory unreadable", archivePath, info.Size())
	}
	defer r.Close()

	absScratch, err := filepath.Abs(scratchDir)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "resolve scratch dir")
	}

	for _, f := range r.File {
		if err := extractEntry(f, absScratch); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, absScratch string) error {
	if f.Mode()&os.ModeSymlink != 0 {
		return pkgerr.New(pkgerr.MalformedEntry, "entry %s is a symbolic link, rejected", f.Name)
	}

	destPath, err := confinedPath(absScratch, f.Name)
	if err != nil {
		return pkgerr.Wrap(pkgerr.MalformedEntry, err, "entry %s escapes scratch root", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "create directory for %s", f.Name)
	}

	rc, err := f.Open()
	if err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "open entry %s", f.Name)
	}
	defer rc.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "create %s", destPath)
	}
	if _, err := io.Copy(dst, rc); err != nil {
		dst.Close()
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "write %s", destPath)
	}
	return dst.Close()
}

// confinedPath joins name onto root after normalizing it, and rejects
// the result if it would resolve outside root — the zip-slip defense.
// Archive entry names are always forward-slash separated per the zip
// spec, regardless of host OS.
func confinedPath(root, name string) (string, error) {
	clean := filepath.Clean(strings.ReplaceAll(name, "\\", "/"))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry path %q is absolute or escapes root", name)
	}
	full := filepath.Join(root, clean)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("entry path %q resolves outside root", name)
	}
	return full, nil
}

// Remove deletes dir. A failure is returned as a CleanupFailed error and
// is not logged here; cleanup is best-effort per the lifecycle contract.
func Remove(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return pkgerr.Wrap(pkgerr.CleanupFailed, err, "remove scratch dir %s", dir)
	}
	return nil
}
