package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/rktop/internal/config"
)

// Set is every source one tick reads. Per-core and per-device sources are
// built on demand by the factory fields.
type Set struct {
	DeviceModel   Source
	NPUVersion    Source
	Uptime        Source
	ServiceStatus Source

	CPUStat   Source
	CPUFreq   func(core int) Source
	CoreCount func(ctx context.Context) (int, error)

	GPULoad Source
	GPUFreq Source
	NPULoad Source
	NPUFreq Source
	RGALoad Source

	VirtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)

	Sensors Source
	NetDev  Source

	Fstab     Source
	DiskUsage func(ctx context.Context, path string) (*disk.UsageStat, error)

	BlockTypes      Source
	BlockTransports Source
	NVMeIdentify    func(dev string) Source
	NVMeSmartLog    func(dev string) Source
	BlockModel      func(dev string) Source
	SmartHealth     func(dev string) Source
	SmartAttributes func(dev string) Source
}

// NewSet wires the production sources for cfg.
func NewSet(cfg config.Config) Set {
	p := cfg.Paths
	t := cfg.CommandTimeout
	return Set{
		DeviceModel:   File(p.DeviceTree),
		NPUVersion:    File(filepath.Join(p.NPUDebug, "version")),
		Uptime:        Func(hostUptime),
		ServiceStatus: Cmd(t, "systemctl", "is-active", cfg.Service),

		CPUStat: File(p.ProcStat),
		CPUFreq: func(core int) Source {
			return File(fmt.Sprintf(p.CPUFreq, core))
		},
		CoreCount: func(ctx context.Context) (int, error) {
			return cpu.CountsWithContext(ctx, true)
		},

		GPULoad: File(filepath.Join(p.GPUDevfreq, "load")),
		GPUFreq: File(filepath.Join(p.GPUDevfreq, "cur_freq")),
		NPULoad: File(filepath.Join(p.NPUDebug, "load")),
		NPUFreq: File(filepath.Join(p.NPUDevfreq, "cur_freq")),
		RGALoad: File(filepath.Join(p.RGADebug, "load")),

		VirtualMemory: mem.VirtualMemoryWithContext,
		SwapMemory:    mem.SwapMemoryWithContext,

		Sensors: Cmd(t, "sensors"),
		NetDev:  File(p.NetDev),

		Fstab:     File(p.Fstab),
		DiskUsage: disk.UsageWithContext,

		BlockTypes:      Cmd(t, "lsblk", "-dno", "NAME,TYPE"),
		BlockTransports: Cmd(t, "lsblk", "-dno", "NAME,TRAN"),
		NVMeIdentify: func(dev string) Source {
			return Cmd(t, "nvme", "id-ctrl", "/dev/"+dev)
		},
		NVMeSmartLog: func(dev string) Source {
			return Cmd(t, "nvme", "smart-log", "/dev/"+dev)
		},
		BlockModel: func(dev string) Source {
			return Cmd(t, "lsblk", "-dno", "MODEL", "/dev/"+dev)
		},
		SmartHealth: func(dev string) Source {
			return Cmd(t, "smartctl", "-H", "/dev/"+dev)
		},
		SmartAttributes: func(dev string) Source {
			return Cmd(t, "smartctl", "-A", "/dev/"+dev)
		},
	}
}

func hostUptime(ctx context.Context) (string, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return "", err
	}
	return FormatUptime(time.Duration(secs) * time.Second), nil
}

// FixedCoreCount is a CoreCount that always reports n.
func FixedCoreCount(n int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return n, nil }
}

// coreName is used in log attributes.
func coreName(core int) string { return "cpu" + strconv.Itoa(core) }
