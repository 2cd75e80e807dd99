// Package mirror implements the Payload Mirror: copying a subtree from
// the scratch directory to the resolved install location.
package mirror

import (
	"io"
	"os"
	"path/filepath"

	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
)

// Mirror walks srcDir depth-first, recreating directories at destDir
// and copying files with overwrite semantics. Content is copied
// exactly; timestamps and ACLs are not preserved.
func Mirror(srcDir, destDir string) error {
	return filepath.Walk(srcDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return pkgerr.Wrap(pkgerr.CorruptArchive, err, "walk %s", path)
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return pkgerr.Wrap(pkgerr.CorruptArchive, err, "relativize %s", path)
		}
		dest := filepath.Join(destDir, rel)

		if fi.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		return copyFile(path, dest)
	})
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "create directory for %s", dest)
	}
	in, err := os.Open(src)
	if err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dest) // overwrite semantics
	if err != nil {
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "create %s", dest)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return pkgerr.Wrap(pkgerr.CorruptArchive, err, "copy to %s", dest)
	}
	return out.Close()
}

// MirrorFiltered mirrors srcDir like Mirror, but skips any relative
// path for which skip returns true — used for foreign copy-type
// installs, which exclude metadata sub-trees from the scratch root.
func MirrorFiltered(srcDir, destDir string, skip func(relPath string) bool) error {
	return filepath.Walk(srcDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return pkgerr.Wrap(pkgerr.CorruptArchive, err, "walk %s", path)
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return pkgerr.Wrap(pkgerr.CorruptArchive, err, "relativize %s", path)
		}
		relSlash := filepath.ToSlash(rel)
		if relSlash != "." && skip(relSlash) {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		dest := filepath.Join(destDir, rel)
		if fi.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		return copyFile(path, dest)
	})
}
