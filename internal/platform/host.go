// Package platform collects facts about the host that configuration
// templates can branch on.
package platform

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/kashifsb/envsetup/pkg/logger"
)

// Facts describes the machine envsetup runs on.
type Facts struct {
	OS            string
	Arch          string
	Platform      string
	Family        string
	Version       string
	KernelVersion string
	Hostname      string
	CPUs          int
}

// Detect gathers host facts. Lookups that fail are logged and left empty;
// OS and Arch always come from the Go runtime.
func Detect(ctx context.Context) Facts {
	facts := Facts{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		CPUs: runtime.NumCPU(),
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		logger.Warn("Failed to read host info", "error", err)
	} else {
		facts.Platform = info.Platform
		facts.Family = info.PlatformFamily
		facts.Version = info.PlatformVersion
		facts.KernelVersion = info.KernelVersion
		facts.Hostname = info.Hostname
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		facts.CPUs = n
	} else if err != nil {
		logger.Debug("Failed to count CPUs", "error", err)
	}

	logger.Debug("Detected platform",
		"os", facts.OS,
		"arch", facts.Arch,
		"platform", facts.Platform,
		"version", facts.Version)
	return facts
}

// TemplateData exposes the facts to configuration templates, e.g.
// {{ .platform.os }}.
func (f Facts) TemplateData() map[string]any {
	return map[string]any{
		"os":             f.OS,
		"arch":           f.Arch,
		"platform":       f.Platform,
		"family":         f.Family,
		"version":        f.Version,
		"kernel_version": f.KernelVersion,
		"hostname":       f.Hostname,
		"cpus":           f.CPUs,
	}
}
