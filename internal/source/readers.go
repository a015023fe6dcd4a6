package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Dicklesworthstone/rktop/internal/model"
)

// NA is the placeholder for identity strings that could not be read.
const NA = "N/A"

// Fallbacks for the storage and accelerator readers.
const (
	unknown          = "Unknown"
	noPercentUsed    = "0"
	placeholderLoads = 3
)

// Reader turns a Set into typed readings. Each method performs one read and
// returns its fallback with ok=false on any failure.
type Reader struct {
	set Set
	log *slog.Logger
}

func NewReader(set Set, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reader{set: set, log: log}
}

func (r *Reader) read(ctx context.Context, name string, src Source) (string, bool) {
	if src == nil {
		r.log.Debug("source not configured", "source", name)
		return "", false
	}
	out, err := src.Read(ctx)
	if err != nil {
		r.log.Debug("source unavailable", "source", name, "error", err)
		return "", false
	}
	return out, true
}

func (r *Reader) unparsable(name string, err error) {
	r.log.Debug("source unparsable", "source", name, "error", err)
}

// Text reads a trimmed identity string, falling back to "N/A". NUL bytes
// (devicetree string lists) are dropped.
func (r *Reader) Text(ctx context.Context, name string, src Source) (string, bool) {
	out, ok := r.read(ctx, name, src)
	if !ok {
		return NA, false
	}
	out = strings.TrimSpace(strings.ReplaceAll(out, "\x00", ""))
	if out == "" {
		return NA, false
	}
	return out, true
}

// DeviceInfo reads the header strings.
func (r *Reader) DeviceInfo(ctx context.Context, service string) model.DeviceInfo {
	info := model.DeviceInfo{Service: service}
	info.Model, _ = r.Text(ctx, "devicetree", r.set.DeviceModel)
	info.NPUVersion, _ = r.Text(ctx, "npu-version", r.set.NPUVersion)
	info.Uptime, _ = r.Text(ctx, "uptime", r.set.Uptime)
	info.ServiceStatus, _ = r.Text(ctx, "service", r.set.ServiceStatus)
	return info
}

// CPUTimes reads per-core counters.
func (r *Reader) CPUTimes(ctx context.Context) (map[int]CoreTimes, bool) {
	out, ok := r.read(ctx, "proc-stat", r.set.CPUStat)
	if !ok {
		return nil, false
	}
	cores, err := ParseCPUStat(out)
	if err != nil {
		r.unparsable("proc-stat", err)
		return nil, false
	}
	return cores, true
}

// CoreCount reports the logical CPU count.
func (r *Reader) CoreCount(ctx context.Context) (int, bool) {
	if r.set.CoreCount == nil {
		return 0, false
	}
	n, err := r.set.CoreCount(ctx)
	if err != nil || n <= 0 {
		r.log.Debug("core count unavailable", "error", err)
		return 0, false
	}
	return n, true
}

// CPUFreq reads one core's frequency in MHz, fallback 0.
func (r *Reader) CPUFreq(ctx context.Context, core int) (int, bool) {
	if r.set.CPUFreq == nil {
		return 0, false
	}
	return r.scaled(ctx, coreName(core)+"-freq", r.set.CPUFreq(core), 1000)
}

// DevfreqMHz reads a devfreq cur_freq file in Hz as MHz, fallback 0.
func (r *Reader) DevfreqMHz(ctx context.Context, name string, src Source) (int, bool) {
	return r.scaled(ctx, name, src, 1_000_000)
}

func (r *Reader) scaled(ctx context.Context, name string, src Source, div int64) (int, bool) {
	out, ok := r.read(ctx, name, src)
	if !ok {
		return 0, false
	}
	v, err := ParseScaledInt(out, div)
	if err != nil {
		r.unparsable(name, err)
		return 0, false
	}
	return v, true
}

// GPULoad reads the GPU utilisation, fallback 0.
func (r *Reader) GPULoad(ctx context.Context) (int, bool) {
	out, ok := r.read(ctx, "gpu-load", r.set.GPULoad)
	if !ok {
		return 0, false
	}
	v, err := ParseGPULoad(out)
	if err != nil {
		r.unparsable("gpu-load", err)
		return 0, false
	}
	return v, true
}

// NPULoad reads every NPU core's load. The fallback is three zeros, one per
// core of the usual three-core NPU.
func (r *Reader) NPULoad(ctx context.Context) ([]int, bool) {
	return r.percents(ctx, "npu-load", r.set.NPULoad, ParsePercents)
}

// RGALoad reads up to three RGA scheduler loads, fallback three zeros.
func (r *Reader) RGALoad(ctx context.Context) ([]int, bool) {
	return r.percents(ctx, "rga-load", r.set.RGALoad, ParseRGALoads)
}

func (r *Reader) percents(ctx context.Context, name string, src Source, parse func(string) []int) ([]int, bool) {
	out, ok := r.read(ctx, name, src)
	if !ok {
		return make([]int, placeholderLoads), false
	}
	vals := parse(out)
	if len(vals) == 0 {
		r.log.Debug("source unparsable", "source", name)
		return make([]int, placeholderLoads), false
	}
	return vals, true
}

// Memory reads RAM and swap usage. Each half falls back independently.
func (r *Reader) Memory(ctx context.Context) model.Memory {
	var m model.Memory
	if r.set.VirtualMemory != nil {
		if vm, err := r.set.VirtualMemory(ctx); err == nil && vm != nil {
			m.RAM = model.Usage{Used: vm.Used, Total: vm.Total, Available: true}
		} else {
			r.log.Debug("source unavailable", "source", "memory", "error", err)
		}
	}
	if r.set.SwapMemory != nil {
		if sw, err := r.set.SwapMemory(ctx); err == nil && sw != nil {
			m.Swap = model.Usage{Used: sw.Used, Total: sw.Total, Available: true}
		} else {
			r.log.Debug("source unavailable", "source", "swap", "error", err)
		}
	}
	return m
}

// Temperatures reads sensor rows. With nothing readable the result is a
// single unclassified "No temperature data." row.
func (r *Reader) Temperatures(ctx context.Context) ([]model.TempReading, bool) {
	fallback := []model.TempReading{{Raw: NoTemperatureData}}
	out, ok := r.read(ctx, "sensors", r.set.Sensors)
	if !ok {
		return fallback, false
	}
	temps := ParseSensors(out)
	if len(temps) == 0 {
		return fallback, false
	}
	return temps, true
}

// NetCounters reads byte counters for the interfaces keep accepts.
func (r *Reader) NetCounters(ctx context.Context, keep func(string) bool) (map[string]NetCounters, bool) {
	out, ok := r.read(ctx, "net-dev", r.set.NetDev)
	if !ok {
		return nil, false
	}
	counters, err := ParseNetDev(out, keep)
	if err != nil {
		r.unparsable("net-dev", err)
		return nil, false
	}
	return counters, true
}

// Filesystems reports usage for every mount point in the filesystem table.
// Mounts that cannot be queried (swap, unmounted) come back unavailable.
func (r *Reader) Filesystems(ctx context.Context) ([]model.FilesystemUsage, bool) {
	out, ok := r.read(ctx, "fstab", r.set.Fstab)
	if !ok {
		return nil, false
	}
	mounts := ParseFstab(out)
	rows := make([]model.FilesystemUsage, 0, len(mounts))
	for _, m := range mounts {
		row := model.FilesystemUsage{Mount: m}
		if r.set.DiskUsage != nil {
			if u, err := r.set.DiskUsage(ctx, m); err == nil && u != nil {
				row.Total, row.Used, row.Free = u.Total, u.Used, u.Free
				row.Available = true
			} else {
				r.log.Debug("source unavailable", "source", "disk-usage", "mount", m, "error", err)
			}
		}
		rows = append(rows, row)
	}
	return rows, true
}

// BlockDevices discovers NVMe disks and USB-attached disks. Absence is not
// an error, so the fallback is two empty lists.
func (r *Reader) BlockDevices(ctx context.Context) (nvme, usb []string) {
	if out, ok := r.read(ctx, "lsblk-type", r.set.BlockTypes); ok {
		nvme = ParseLsblk(out, "disk", "nvme")
	}
	if out, ok := r.read(ctx, "lsblk-tran", r.set.BlockTransports); ok {
		usb = ParseLsblk(out, "usb", "")
	}
	return nvme, usb
}

// NVMeDevice queries model and SMART log for one NVMe disk.
func (r *Reader) NVMeDevice(ctx context.Context, dev string) model.StorageDevice {
	d := model.StorageDevice{Name: dev, Model: unknown, Temp: NA, PowerOnHours: NA, PercentUsed: noPercentUsed}
	if r.set.NVMeIdentify != nil {
		if out, ok := r.read(ctx, dev+"-id-ctrl", r.set.NVMeIdentify(dev)); ok {
			if m, ok := ParseNVMeModel(out); ok {
				d.Model = m
			}
		}
	}
	if r.set.NVMeSmartLog != nil {
		if out, ok := r.read(ctx, dev+"-smart-log", r.set.NVMeSmartLog(dev)); ok {
			if v, ok := ParseSmartLogField(out, "temperature"); ok {
				d.Temp = v
			}
			if v, ok := ParseSmartLogField(out, "power_on_hours"); ok {
				d.PowerOnHours = v
			}
			if v, ok := ParseSmartLogField(out, "percentage_used"); ok {
				d.PercentUsed = strings.TrimSpace(strings.ReplaceAll(v, "%", ""))
			}
		}
	}
	return d
}

// USBDevice queries model and SMART data for one USB-attached disk.
func (r *Reader) USBDevice(ctx context.Context, dev string) model.StorageDevice {
	d := model.StorageDevice{Name: dev, Model: unknown, Health: unknown, Temp: NA, PowerOnHours: NA}
	if r.set.BlockModel != nil {
		if m, ok := r.Text(ctx, dev+"-model", r.set.BlockModel(dev)); ok {
			d.Model = m
		}
	}
	if r.set.SmartHealth != nil {
		if out, ok := r.read(ctx, dev+"-smart-health", r.set.SmartHealth(dev)); ok {
			if v, ok := ParseSmartHealth(out); ok {
				d.Health = v
			}
		}
	}
	if r.set.SmartAttributes != nil {
		if out, ok := r.read(ctx, dev+"-smart-attrs", r.set.SmartAttributes(dev)); ok {
			if v, ok := ParseSmartAttribute(out, "Temperature_Celsius"); ok {
				d.Temp = v
			}
			if v, ok := ParseSmartAttribute(out, "Power_On_Hours"); ok {
				d.PowerOnHours = v
			}
		}
	}
	return d
}
