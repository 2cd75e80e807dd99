//go:build windows
// +build windows

// Package sysinfo answers the --dominfo and --volinfo diagnostic
// queries: domain/workgroup membership and host facts for the former,
// logical volume enumeration with capacity for the latter.
package sysinfo

import (
	"fmt"
	"sort"

	"github.com/gonutz/w32"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows/registry"
)

// DomainInfo is the --dominfo payload: the fixed set of installation
// domain facts the macOS original reports, translated to their closest
// Windows equivalents (domain/workgroup membership rather than
// "local"/"network"/"system").
type DomainInfo struct {
	ComputerName  string
	Domain        string
	Workgroup     string
	PartOfDomain  bool
	OS            string
	KernelVersion string
	MachinePath   string
	UserPath      string
}

type win32ComputerSystem struct {
	Name         string
	Domain       string
	PartOfDomain bool
	Workgroup    string
}

// QueryDomainInfo gathers machine/domain facts via WMI's
// Win32_ComputerSystem (the one membership fact gopsutil does not
// expose on Windows) and gopsutil/host for the surrounding OS facts.
func QueryDomainInfo() (DomainInfo, error) {
	var rows []win32ComputerSystem
	if err := wmi.Query("SELECT Name, Domain, PartOfDomain, Workgroup FROM Win32_ComputerSystem", &rows); err != nil {
		return DomainInfo{}, fmt.Errorf("query Win32_ComputerSystem: %w", err)
	}
	if len(rows) == 0 {
		return DomainInfo{}, fmt.Errorf("Win32_ComputerSystem returned no rows")
	}
	row := rows[0]

	info := DomainInfo{
		ComputerName: row.Name,
		Domain:       row.Domain,
		Workgroup:    row.Workgroup,
		PartOfDomain: row.PartOfDomain,
	}

	if hostInfo, err := host.Info(); err == nil {
		info.OS = hostInfo.Platform + " " + hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
	}

	info.MachinePath, _ = readPath(registry.LOCAL_MACHINE, `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`)
	info.UserPath, _ = readPath(registry.CURRENT_USER, `Environment`)

	return info, nil
}

// readPath reads the PATH value from the given registry hive/key
// without spawning PowerShell, the same pair of locations the
// Compatibility Shim's Install-ChocolateyPath/Update-SessionEnvironment
// operations write to. Used for --dominfo-adjacent diagnostics and so
// tests can assert shim idempotence by reading the result directly.
func readPath(hive registry.Key, path string) (string, error) {
	k, err := registry.OpenKey(hive, path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open registry key %s: %w", path, err)
	}
	defer k.Close()

	value, _, err := k.GetStringValue("Path")
	if err != nil {
		return "", fmt.Errorf("read Path value: %w", err)
	}
	return value, nil
}

// VolumeInfo is one row of the --volinfo report.
type VolumeInfo struct {
	Letter     string // e.g. "C:\"
	DriveType  string // "fixed", "removable", "remote", "cdrom", "ramdisk", "unknown"
	TotalBytes uint64
	FreeBytes  uint64
}

// QueryVolumes enumerates logical drives via the classic Win32 API
// (gonutz/w32), then reads each volume's capacity through gopsutil/disk
// (left zero when that read fails) — the same two-source pattern the
// source ecosystem's GUI status tool uses for any Win32-level system
// fact gopsutil alone can't answer (drive-letter enumeration isn't one
// of gopsutil's supported primitives on Windows).
func QueryVolumes() ([]VolumeInfo, error) {
	letters := w32.GetLogicalDriveStrings()
	sort.Strings(letters)

	volumes := make([]VolumeInfo, 0, len(letters))
	for _, letter := range letters {
		v := VolumeInfo{Letter: letter, DriveType: driveTypeName(w32.GetDriveType(letter))}
		if usage, err := disk.Usage(letter); err == nil {
			v.TotalBytes = usage.Total
			v.FreeBytes = usage.Free
		}
		volumes = append(volumes, v)
	}
	return volumes, nil
}

func driveTypeName(t w32.DriveType) string {
	switch t {
	case w32.DRIVE_REMOVABLE:
		return "removable"
	case w32.DRIVE_FIXED:
		return "fixed"
	case w32.DRIVE_REMOTE:
		return "remote"
	case w32.DRIVE_CDROM:
		return "cdrom"
	case w32.DRIVE_RAMDISK:
		return "ramdisk"
	default:
		return "unknown"
	}
}
