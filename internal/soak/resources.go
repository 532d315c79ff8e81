package soak

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Resources is a snapshot of process resource usage.
type Resources struct {
	RSS                 uint64  `json:"rss_bytes"`
	VMS                 uint64  `json:"vms_bytes"`
	HeapAlloc           uint64  `json:"heap_alloc_bytes"`
	CPUPercent          float64 `json:"cpu_percent"`
	SystemMemoryPercent float64 `json:"system_memory_percent"`
	Goroutines          int     `json:"goroutines"`
}

// resourceMonitor samples the current process. Sampling is best effort: a
// field that cannot be read stays zero.
type resourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
}

func newResourceMonitor() *resourceMonitor {
	rm := &resourceMonitor{startTime: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return rm
	}
	rm.process = proc
	if cpuTime, err := proc.Times(); err == nil {
		rm.startCPUTime = cpuTime.Total()
	}
	return rm
}

func (rm *resourceMonitor) sample() Resources {
	var usage Resources

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	usage.HeapAlloc = memStats.HeapAlloc
	usage.Goroutines = runtime.NumGoroutine()

	if rm.process != nil {
		if memInfo, err := rm.process.MemoryInfo(); err == nil {
			usage.RSS = memInfo.RSS
			usage.VMS = memInfo.VMS
		}
		if cpuTime, err := rm.process.Times(); err == nil {
			if elapsed := time.Since(rm.startTime).Seconds(); elapsed > 0 {
				usage.CPUPercent = ((cpuTime.Total() - rm.startCPUTime) / elapsed) * 100
			}
		}
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemoryPercent = vmStat.UsedPercent
	}
	return usage
}
