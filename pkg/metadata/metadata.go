// Package metadata decodes a package's native build-info.yaml or
// foreign *.nuspec document into a uniform PackageInfo.
package metadata

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
	"github.com/windowsadmins/cimipkg/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Kind tags an archive as native or foreign.
type Kind int

const (
	Native Kind = iota
	Foreign
)

func (k Kind) String() string {
	if k == Foreign {
		return "foreign"
	}
	return "native"
}

// NativeExt and ForeignExt are the file extensions that select an
// Archive Kind; any other extension is a BadInput error.
const (
	NativeExt  = ".cimipkg"
	ForeignExt = ".nupkg"
)

// KindForPath derives the Archive Kind from archivePath's extension.
func KindForPath(archivePath string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case NativeExt:
		return Native, nil
	case ForeignExt:
		return Foreign, nil
	default:
		return 0, pkgerr.New(pkgerr.BadInput, "unsupported archive extension %q", filepath.Ext(archivePath))
	}
}

// NativeMeta is the build-info.yaml document.
type NativeMeta struct {
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	Description     string   `yaml:"description"`
	Author          string   `yaml:"author"`
	License         string   `yaml:"license"`
	Homepage        string   `yaml:"homepage"`
	Target          string   `yaml:"target"`
	InstallLocation string   `yaml:"install_location"`
	RestartAction   string   `yaml:"restart_action"`
	Dependencies    []string `yaml:"dependencies"`
}

// ForeignMeta is the subset of a nuspec <metadata> element this tool reads.
type ForeignMeta struct {
	ID          string `xml:"id"`
	Version     string `xml:"version"`
	Title       string `xml:"title"`
	Authors     string `xml:"authors"`
	Description string `xml:"description"`
	Owners      string `xml:"owners"`
	Tags        string `xml:"tags"`
}

type nuspecDoc struct {
	XMLName  xml.Name    `xml:"package"`
	Metadata ForeignMeta `xml:"metadata"`
}

// PackageInfo is the uniform record produced by the Metadata Parser,
// populated after extraction and consumed by the Classifier.
type PackageInfo struct {
	Kind        Kind
	ArchivePath string
	ScratchDir  string

	NativeMeta  *NativeMeta
	ForeignMeta *ForeignMeta

	HasPreNative   bool
	HasPostNative  bool
	HasPreForeign  bool
	HasPostForeign bool

	PayloadFiles []string
}

const (
	preNativePath   = "scripts/preinstall.ps1"
	postNativePath  = "scripts/postinstall.ps1"
	preForeignPath  = "tools/chocolateyBeforeInstall.ps1"
	postForeignPath = "tools/chocolateyInstall.ps1"
)

// Parse builds a PackageInfo for the archive already extracted to
// scratchDir. It never returns an error for an absent native metadata
// file or for zero nuspec matches — those are spec-mandated defaults;
// it returns BadMetadata only for a document that exists but fails to
// parse.
func Parse(kind Kind, archivePath, scratchDir string) (*PackageInfo, error) {
	info := &PackageInfo{
		Kind:        kind,
		ArchivePath: archivePath,
		ScratchDir:  scratchDir,
	}

	info.HasPreNative = fileExists(filepath.Join(scratchDir, preNativePath))
	info.HasPostNative = fileExists(filepath.Join(scratchDir, postNativePath))
	info.HasPreForeign = fileExists(filepath.Join(scratchDir, preForeignPath))
	info.HasPostForeign = fileExists(filepath.Join(scratchDir, postForeignPath))

	switch kind {
	case Native:
		meta, err := parseNative(scratchDir)
		if err != nil {
			return nil, err
		}
		info.NativeMeta = meta
		info.PayloadFiles, err = listPayload(filepath.Join(scratchDir, "payload"))
		if err != nil {
			return nil, err
		}
	case Foreign:
		meta, err := parseForeign(scratchDir)
		if err != nil {
			return nil, err
		}
		info.ForeignMeta = meta
		var err2 error
		info.PayloadFiles, err2 = listForeignPayload(scratchDir)
		if err2 != nil {
			return nil, err2
		}
	}

	return info, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseNative(scratchDir string) (*NativeMeta, error) {
	path := filepath.Join(scratchDir, "build-info.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &NativeMeta{}, nil
		}
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "read build-info.yaml")
	}

	var meta NativeMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "parse build-info.yaml")
	}

	meta.Version = normalizeVersion(meta.Version)
	if meta.InstallLocation != "" && !filepath.IsAbs(meta.InstallLocation) {
		meta.InstallLocation = utils.NormalizeWindowsPath(meta.InstallLocation)
	}
	return &meta, nil
}

// normalizeVersion re-renders v through go-version when it parses as a
// well-formed version string, which collapses incidental formatting
// differences (leading zeros, "v" prefixes) an archive author may have
// used. A value that isn't version-shaped is passed through unchanged
// rather than rejected — the field is informational, never resolved.
func normalizeVersion(v string) string {
	if v == "" {
		return v
	}
	parsed, err := goversion.NewVersion(v)
	if err != nil {
		return v
	}
	return parsed.String()
}

// parseForeign globs *.nuspec at scratch root, strips the root
// namespace and every namespace-declaration attribute so historical
// schema versions all bind to the same structural fields, then decodes.
func parseForeign(scratchDir string) (*ForeignMeta, error) {
	matches, err := filepath.Glob(filepath.Join(scratchDir, "*.nuspec"))
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "glob *.nuspec")
	}
	if len(matches) == 0 {
		// Not an error: foreign_meta is left absent. No warning is
		// emitted here, and none is emitted for multiple matches below.
		return nil, nil
	}
	sort.Strings(matches)
	chosen := matches[0]

	raw, err := os.ReadFile(chosen)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "read %s", filepath.Base(chosen))
	}

	stripped, err := stripNamespaces(raw)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "normalize namespaces in %s", filepath.Base(chosen))
	}

	var doc nuspecDoc
	if err := xml.Unmarshal(stripped, &doc); err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "parse %s", filepath.Base(chosen))
	}
	doc.Metadata.ID = strings.TrimSpace(doc.Metadata.ID)
	doc.Metadata.Version = normalizeVersion(strings.TrimSpace(doc.Metadata.Version))
	doc.Metadata.Title = strings.TrimSpace(doc.Metadata.Title)
	doc.Metadata.Authors = strings.TrimSpace(doc.Metadata.Authors)
	doc.Metadata.Description = strings.TrimSpace(doc.Metadata.Description)
	return &doc.Metadata, nil
}

// stripNamespaces walks the XML token stream, drops every xmlns /
// xmlns:* attribute and clears each element name's namespace, then
// re-serializes. This is the DOM-pass-as-token-walk the parser needs:
// the tool accepts every historically distinct nuspec schema namespace
// with a single static struct by making namespace invisible to it.
func stripNamespaces(raw []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			t.Name.Space = ""
			attrs := t.Attr[:0]
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				a.Name.Space = ""
				attrs = append(attrs, a)
			}
			t.Attr = attrs
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			t.Name.Space = ""
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
		default:
			if err := enc.EncodeToken(tok); err != nil {
				return nil, err
			}
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func listPayload(payloadDir string) ([]string, error) {
	var files []string
	if _, err := os.Stat(payloadDir); os.IsNotExist(err) {
		return files, nil
	}
	err := filepath.Walk(payloadDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(payloadDir, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "enumerate payload")
	}
	sort.Strings(files)
	return files, nil
}

// ExcludedForeignPrefixes are metadata sub-trees never mirrored for a
// foreign copy-type install.
var ExcludedForeignPrefixes = []string{"_rels/", "package/", "tools/"}

func listForeignPayload(scratchDir string) ([]string, error) {
	var files []string
	err := filepath.Walk(scratchDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(scratchDir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if IsExcludedForeignPath(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.BadMetadata, err, "enumerate foreign payload")
	}
	sort.Strings(files)
	return files, nil
}

// IsExcludedForeignPath reports whether rel (forward-slash, relative to
// scratch root) belongs to a metadata sub-tree excluded from mirroring:
// _rels/, package/, tools/ (the directory itself or anything below it),
// [Content_Types].xml, or *.nuspec.
func IsExcludedForeignPath(rel string) bool {
	lower := strings.ToLower(rel)
	if strings.HasSuffix(lower, ".nuspec") {
		return true
	}
	if lower == "[content_types].xml" {
		return true
	}
	for _, prefix := range ExcludedForeignPrefixes {
		if strings.HasPrefix(lower, prefix) || lower+"/" == prefix {
			return true
		}
	}
	return false
}

// QueryField resolves one of the six --query fields against whichever
// metadata is present, extended (per the supplemented-features note) to
// also answer against foreign metadata rather than erroring.
func QueryField(info *PackageInfo, field string) (string, error) {
	switch info.Kind {
	case Native:
		m := info.NativeMeta
		if m == nil {
			m = &NativeMeta{}
		}
		switch field {
		case "name":
			return m.Name, nil
		case "version":
			return m.Version, nil
		case "description":
			return m.Description, nil
		case "author":
			return m.Author, nil
		case "license":
			return m.License, nil
		case "RestartAction":
			return m.RestartAction, nil
		}
	case Foreign:
		m := info.ForeignMeta
		if m == nil {
			m = &ForeignMeta{}
		}
		switch field {
		case "name":
			if m.Title != "" {
				return m.Title, nil
			}
			return m.ID, nil
		case "version":
			return m.Version, nil
		case "description":
			if m.Description != "" {
				return m.Description, nil
			}
			return m.Title, nil
		case "author":
			return m.Authors, nil
		case "license":
			return "", nil
		case "RestartAction":
			return "", nil
		}
	}
	return "", pkgerr.New(pkgerr.BadInput, "unknown query field %q", field)
}
