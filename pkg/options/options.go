// Package options parses the CLI surface named in §6 into a plain
// struct, replacing the source repo's registry/CSP-backed Configuration
// (which targets a fleet-managed catalog subsystem out of scope here)
// with a flags-only options record a single executable can echo back
// verbatim via --config.
package options

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Options is every flag recognized by the CLI surface in §6.
type Options struct {
	PkgPath        string
	Target         string
	PkgInfo        bool
	DomInfo        bool
	VolInfo        bool
	Query          string
	Verbose        int
	VerboseR       bool
	DumpLog        bool
	Plist          bool
	AllowUntrusted bool
	PrintVersion   bool
	ShowConfig     bool
}

// Parse registers and parses the flag set against args (ordinarily
// os.Args[1:], already reparsed by utils.PatchWindowsArgs in main).
func Parse(args []string) (*Options, error) {
	fs := pflag.NewFlagSet("cimipkg", pflag.ContinueOnError)

	opts := &Options{Target: "/"}
	fs.StringVar(&opts.PkgPath, "pkg", "", "path to the package archive")
	fs.StringVar(&opts.Target, "target", "/", "install target root")
	fs.BoolVar(&opts.PkgInfo, "pkginfo", false, "print metadata summary and exit")
	fs.BoolVar(&opts.DomInfo, "dominfo", false, "print installation domain facts")
	fs.BoolVar(&opts.VolInfo, "volinfo", false, "print available volumes")
	fs.StringVar(&opts.Query, "query", "", "print one metadata field (name, version, description, author, license, RestartAction)")
	fs.CountVarP(&opts.Verbose, "verbose", "v", "increase verbosity")
	fs.BoolVar(&opts.VerboseR, "verboseR", false, "echo raw script output to the console")
	fs.BoolVar(&opts.DumpLog, "dumplog", false, "write a transcript of captured script output")
	fs.BoolVar(&opts.Plist, "plist", false, "render info output as an XML property list")
	fs.BoolVar(&opts.AllowUntrusted, "allowUntrusted", false, "accepted and ignored; no signature verification is implemented")
	fs.BoolVar(&opts.PrintVersion, "vers", false, "print the tool's version and exit")
	fs.BoolVar(&opts.ShowConfig, "config", false, "echo parsed options and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return opts, nil
}

// Echo renders opts as the plain key/value listing --config prints.
func Echo(opts *Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pkg: %s\n", opts.PkgPath)
	fmt.Fprintf(&b, "target: %s\n", opts.Target)
	fmt.Fprintf(&b, "pkginfo: %t\n", opts.PkgInfo)
	fmt.Fprintf(&b, "dominfo: %t\n", opts.DomInfo)
	fmt.Fprintf(&b, "volinfo: %t\n", opts.VolInfo)
	fmt.Fprintf(&b, "query: %s\n", opts.Query)
	fmt.Fprintf(&b, "verbose: %d\n", opts.Verbose)
	fmt.Fprintf(&b, "verboseR: %t\n", opts.VerboseR)
	fmt.Fprintf(&b, "dumplog: %t\n", opts.DumpLog)
	fmt.Fprintf(&b, "plist: %t\n", opts.Plist)
	fmt.Fprintf(&b, "allowUntrusted: %t\n", opts.AllowUntrusted)
	return b.String()
}
