package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Resources is a snapshot of the host used to size worker pools.
type Resources struct {
	CPUs      int
	TotalMem  uint64
	AvailMem  uint64
	MemUsedPc float64
}

// perWorkerMem is a rough budget for one ffmpeg segment encode.
const perWorkerMem = 256 << 20

func ProbeResources() Resources {
	r := Resources{CPUs: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		r.CPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.TotalMem = vm.Total
		r.AvailMem = vm.Available
		r.MemUsedPc = vm.UsedPercent
	}
	return r
}

// Workers returns requested when positive, otherwise a count bounded by
// CPUs and available memory.
func (r Resources) Workers(requested int) int {
	if requested > 0 {
		return requested
	}
	n := r.CPUs
	if r.AvailMem > 0 {
		if byMem := int(r.AvailMem / perWorkerMem); byMem < n {
			n = byMem
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}
