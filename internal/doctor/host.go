package doctor

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo summarises the machine builds run on.
type HostInfo struct {
	OS          string  `json:"os" yaml:"os"`
	Arch        string  `json:"arch" yaml:"arch"`
	Platform    string  `json:"platform,omitempty" yaml:"platform,omitempty"`
	CPUs        int     `json:"cpus" yaml:"cpus"`
	MemoryTotal uint64  `json:"memory_total" yaml:"memory_total"`
	MemoryUsed  float64 `json:"memory_used_percent" yaml:"memory_used_percent"`
}

// Host gathers host details. Fields that cannot be read stay zero.
func Host() HostInfo {
	info := HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH, CPUs: runtime.NumCPU()}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		info.CPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryUsed = vm.UsedPercent
	}
	if h, err := host.Info(); err == nil {
		info.Platform = h.Platform + " " + h.PlatformVersion
	}
	return info
}
