package capability

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostSummary describes the machine a job runs on.
type HostSummary struct {
	OS              string
	Platform        string
	PlatformVersion string
	Kernel          string
	Arch            string
	CPUModel        string
	LogicalCPUs     int
	MemoryBytes     uint64
}

// Host gathers a best-effort summary. Fields that cannot be read stay empty;
// the first error encountered is returned alongside the partial summary.
func Host(ctx context.Context) (HostSummary, error) {
	summary := HostSummary{OS: runtime.GOOS, Arch: runtime.GOARCH}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	info, err := host.InfoWithContext(ctx)
	keep(err)
	if info != nil {
		summary.Platform = info.Platform
		summary.PlatformVersion = info.PlatformVersion
		summary.Kernel = info.KernelVersion
		if info.KernelArch != "" {
			summary.Arch = info.KernelArch
		}
	}

	cpus, err := cpu.InfoWithContext(ctx)
	keep(err)
	if len(cpus) > 0 {
		summary.CPUModel = cpus[0].ModelName
	}
	count, err := cpu.CountsWithContext(ctx, true)
	keep(err)
	summary.LogicalCPUs = count

	vm, err := mem.VirtualMemoryWithContext(ctx)
	keep(err)
	if vm != nil {
		summary.MemoryBytes = vm.Total
	}

	return summary, firstErr
}
