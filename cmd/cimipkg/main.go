// cmd/cimipkg/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sys/windows"

	"github.com/windowsadmins/cimipkg/pkg/archive"
	"github.com/windowsadmins/cimipkg/pkg/logging"
	"github.com/windowsadmins/cimipkg/pkg/metadata"
	"github.com/windowsadmins/cimipkg/pkg/options"
	"github.com/windowsadmins/cimipkg/pkg/orchestrator"
	"github.com/windowsadmins/cimipkg/pkg/pkgerr"
	"github.com/windowsadmins/cimipkg/pkg/plist"
	"github.com/windowsadmins/cimipkg/pkg/sysinfo"
	"github.com/windowsadmins/cimipkg/pkg/utils"
	"github.com/windowsadmins/cimipkg/pkg/version"
)

func main() {
	utils.PatchWindowsArgs()
	enableColors()

	opts, err := options.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.PrintVersion {
		version.Print()
		return
	}
	if opts.ShowConfig {
		fmt.Print(options.Echo(opts))
		return
	}

	sink := logging.New(logging.ParseLevel(opts.Verbose))
	sink.SetEcho(opts.VerboseR || opts.DumpLog)

	exitCode := run(sink, opts)
	os.Exit(exitCode)
}

func run(sink *logging.Sink, opts *options.Options) int {
	switch {
	case opts.DomInfo:
		return runDomInfo(opts)
	case opts.VolInfo:
		return runVolInfo(opts)
	case opts.PkgInfo, opts.Query != "":
		return runInfo(opts)
	default:
		return runInstall(sink, opts)
	}
}

func runInstall(sink *logging.Sink, opts *options.Options) int {
	if opts.PkgPath == "" {
		fmt.Fprintln(os.Stderr, "pkgerr: BadInput: --pkg is required")
		return 1
	}

	result, err := orchestrator.Run(sink, orchestrator.Options{
		ArchivePath:    opts.PkgPath,
		TargetSpec:     opts.Target,
		AllowUntrusted: opts.AllowUntrusted,
	})

	if opts.DumpLog && result != nil {
		dumpTranscript(opts, result)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return pkgerr.ExitCode(err)
	}

	sink.Infof("installed %s (%s) to %s", opts.PkgPath, result.Mode, result.InstallLocation)
	return 0
}

func dumpTranscript(opts *options.Options, result *orchestrator.Outcome) {
	entries := append(append([]logging.TranscriptEntry{}, result.PreTranscript...), result.PostTranscript...)
	name := filepath.Base(opts.PkgPath) + "." + time.Now().Format("20060102-150405") + ".dumplog.yaml"
	path := filepath.Join(os.TempDir(), name)
	if err := logging.DumpTranscript(path, entries); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write dumplog: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "dumplog written to %s\n", path)
}

func runInfo(opts *options.Options) int {
	if opts.PkgPath == "" {
		fmt.Fprintln(os.Stderr, "pkgerr: BadInput: --pkg is required")
		return 1
	}

	kind, err := metadata.KindForPath(opts.PkgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return pkgerr.ExitCode(err)
	}

	// Archive is opened into a throwaway scratch dir purely to read its
	// metadata; the orchestrator owns the real install lifecycle.
	scratchDir, err := archive.NewScratchDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return pkgerr.ExitCode(err)
	}
	defer archive.Remove(scratchDir)

	if err := archive.Extract(opts.PkgPath, scratchDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return pkgerr.ExitCode(err)
	}

	info, err := metadata.Parse(kind, opts.PkgPath, scratchDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return pkgerr.ExitCode(err)
	}

	if opts.Query != "" {
		value, err := metadata.QueryField(info, opts.Query)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return pkgerr.ExitCode(err)
		}
		if opts.Query == "version" {
			value = version.Normalize(value)
		}
		printInfoResult(opts, []plist.KV{{Key: opts.Query, Value: value}}, value)
		return 0
	}

	pairs := []plist.KV{}
	for _, field := range []string{"name", "version", "description", "author", "license", "RestartAction"} {
		value, _ := metadata.QueryField(info, field)
		pairs = append(pairs, plist.KV{Key: field, Value: value})
	}
	printInfoResult(opts, pairs, "")
	return 0
}

func printInfoResult(opts *options.Options, pairs []plist.KV, plain string) {
	if opts.Plist {
		doc, err := plist.MarshalDict(pairs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Print(string(doc))
		return
	}
	if plain != "" {
		fmt.Println(plain)
		return
	}
	for _, kv := range pairs {
		fmt.Printf("%s: %s\n", kv.Key, kv.Value)
	}
}

func runDomInfo(opts *options.Options) int {
	info, err := sysinfo.QueryDomainInfo()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.Plist {
		doc, _ := plist.MarshalDict([]plist.KV{
			{Key: "ComputerName", Value: info.ComputerName},
			{Key: "Domain", Value: info.Domain},
			{Key: "Workgroup", Value: info.Workgroup},
			{Key: "PartOfDomain", Value: fmt.Sprintf("%t", info.PartOfDomain)},
			{Key: "OS", Value: info.OS},
			{Key: "MachinePath", Value: info.MachinePath},
			{Key: "UserPath", Value: info.UserPath},
		})
		fmt.Print(string(doc))
		return 0
	}
	fmt.Printf("ComputerName: %s\nDomain: %s\nWorkgroup: %s\nPartOfDomain: %t\nOS: %s\nMachinePath: %s\nUserPath: %s\n",
		info.ComputerName, info.Domain, info.Workgroup, info.PartOfDomain, info.OS, info.MachinePath, info.UserPath)
	return 0
}

func runVolInfo(opts *options.Options) int {
	volumes, err := sysinfo.QueryVolumes()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.Plist {
		lines := make([]string, 0, len(volumes))
		for _, v := range volumes {
			lines = append(lines, fmt.Sprintf("%s (%s): %d/%d bytes free", v.Letter, v.DriveType, v.FreeBytes, v.TotalBytes))
		}
		doc, _ := plist.MarshalArray(lines)
		fmt.Print(string(doc))
		return 0
	}
	for _, v := range volumes {
		fmt.Printf("%s\t%s\t%d/%d bytes free\n", v.Letter, v.DriveType, v.FreeBytes, v.TotalBytes)
	}
	return 0
}

func enableColors() {
	if runtime.GOOS == "windows" {
		handle := windows.Handle(windows.STD_OUTPUT_HANDLE)
		var mode uint32
		if err := windows.GetConsoleMode(handle, &mode); err == nil {
			mode |= 0x0004 // ENABLE_VIRTUAL_TERMINAL_PROCESSING
			_ = windows.SetConsoleMode(handle, mode)
		}
	}
}
