package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/rktop/internal/config"
	"github.com/Dicklesworthstone/rktop/internal/model"
	"github.com/Dicklesworthstone/rktop/internal/source"
)

// Sampler builds one Snapshot per tick from the configured sources.
type Sampler struct {
	Interval time.Duration

	cfg    config.Config
	set    source.Set
	reader *source.Reader
	log    *slog.Logger
	now    func() time.Time

	cpu *CPULoadCalculator
	net *NetRateCalculator
}

func New(cfg config.Config, set source.Set, log *slog.Logger) *Sampler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sampler{
		Interval: cfg.Interval,
		cfg:      cfg,
		set:      set,
		reader:   source.NewReader(set, log),
		log:      log,
		now:      time.Now,
		cpu:      NewCPULoadCalculator(),
		net:      NewNetRateCalculator(),
	}
}

// WithClock replaces the wall clock used to stamp snapshots and time rates.
func (s *Sampler) WithClock(now func() time.Time) *Sampler {
	s.now = now
	return s
}

// Stream returns a channel that will receive snapshots until ctx is done.
// The first snapshot is taken immediately.
func (s *Sampler) Stream(ctx context.Context) <-chan model.Snapshot {
	ch := make(chan model.Snapshot)
	sched := NewScheduler(s, s.Interval, s.log)
	go func() {
		defer close(ch)
		_ = sched.Run(ctx, func(snap model.Snapshot) {
			select {
			case ch <- snap:
			case <-ctx.Done():
			}
		})
	}()
	return ch
}

// Sample reads every source once and assembles the result. A family that
// panics is logged and left at its fallback; the rest of the tick goes on.
func (s *Sampler) Sample(ctx context.Context) model.Snapshot {
	now := s.now()
	snap := model.Snapshot{Timestamp: now, Interval: s.Interval}

	snap.Device = guard(s, "device", unknownDevice(s.cfg.Service), func() model.DeviceInfo {
		return s.reader.DeviceInfo(ctx, s.cfg.Service)
	})
	snap.Cores = guard(s, "cpu", []model.CoreReading{}, func() []model.CoreReading {
		return s.cores(ctx, now)
	})
	snap.GPU = guard(s, "gpu", idleAccelerator("GPU", 1), func() model.Accelerator {
		load, ok := s.reader.GPULoad(ctx)
		return model.Accelerator{
			Name:  "GPU",
			Loads: classifyLoads([]int{load}, ok),
			Freq:  freq(s.reader.DevfreqMHz(ctx, "gpu-freq", s.set.GPUFreq)),
		}
	})
	snap.NPU = guard(s, "npu", idleAccelerator("NPU", 3), func() model.Accelerator {
		loads, ok := s.reader.NPULoad(ctx)
		return model.Accelerator{
			Name:  "NPU",
			Loads: classifyLoads(loads, ok),
			Freq:  freq(s.reader.DevfreqMHz(ctx, "npu-freq", s.set.NPUFreq)),
		}
	})
	snap.RGA = guard(s, "rga", idleAccelerator("RGA", 3), func() model.Accelerator {
		loads, ok := s.reader.RGALoad(ctx)
		return model.Accelerator{Name: "RGA", Loads: classifyLoads(loads, ok)}
	})
	snap.Memory = guard(s, "memory", model.Memory{}, func() model.Memory {
		return s.reader.Memory(ctx)
	})
	snap.Temps = guard(s, "temperature", []model.TempReading{{Raw: source.NoTemperatureData}}, func() []model.TempReading {
		temps, _ := s.reader.Temperatures(ctx)
		return temps
	})
	snap.Network = guard(s, "network", map[string]model.NetRate{}, func() map[string]model.NetRate {
		counters, ok := s.reader.NetCounters(ctx, s.cfg.Net.Match)
		if !ok {
			return map[string]model.NetRate{}
		}
		return s.net.Observe(now, counters)
	})
	snap.Filesystems = guard(s, "filesystems", []model.FilesystemUsage{}, func() []model.FilesystemUsage {
		rows, _ := s.reader.Filesystems(ctx)
		return rows
	})
	snap.Storage = guard(s, "storage", model.Storage{}, func() model.Storage {
		return s.storage(ctx)
	})
	return snap
}

// cores reports every logical core, including ones missing from /proc/stat
// (offline), so frequencies still show.
func (s *Sampler) cores(ctx context.Context, now time.Time) []model.CoreReading {
	times, _ := s.reader.CPUTimes(ctx)
	n, ok := s.reader.CoreCount(ctx)
	if !ok {
		for idx := range times {
			n = max(n, idx+1)
		}
	}

	cores := make([]model.CoreReading, 0, n)
	for i := range n {
		c := model.CoreReading{Index: i}
		if t, ok := times[i]; ok {
			load, _ := s.cpu.Observe(now, i, t)
			c.Load = model.LoadReading{
				Value:     load,
				Tier:      model.Classify(load, model.CoreThresholds(i, n)),
				Available: true,
			}
		}
		c.Freq = freq(s.reader.CPUFreq(ctx, i))
		cores = append(cores, c)
	}
	return cores
}

func (s *Sampler) storage(ctx context.Context) model.Storage {
	nvme, usb := s.reader.BlockDevices(ctx)
	st := model.Storage{
		NVMe: make([]model.StorageDevice, 0, len(nvme)),
		USB:  make([]model.StorageDevice, 0, len(usb)),
	}
	for _, dev := range nvme {
		st.NVMe = append(st.NVMe, s.reader.NVMeDevice(ctx, dev))
	}
	for _, dev := range usb {
		st.USB = append(st.USB, s.reader.USBDevice(ctx, dev))
	}
	return st
}

func guard[T any](s *Sampler, family string, fallback T, step func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("sampling step failed", "family", family, "panic", r)
			out = fallback
		}
	}()
	return step()
}

func classifyLoads(vals []int, ok bool) []model.LoadReading {
	loads := make([]model.LoadReading, len(vals))
	for i, v := range vals {
		loads[i] = model.LoadReading{Value: v, Tier: model.Classify(v, model.LoadThresholds), Available: ok}
	}
	return loads
}

func freq(mhz int, ok bool) model.FreqReading {
	return model.FreqReading{MHz: mhz, Available: ok}
}

func idleAccelerator(name string, cores int) model.Accelerator {
	return model.Accelerator{Name: name, Loads: classifyLoads(make([]int, cores), false)}
}

func unknownDevice(service string) model.DeviceInfo {
	return model.DeviceInfo{
		Model:         source.NA,
		NPUVersion:    source.NA,
		Uptime:        source.NA,
		Service:       service,
		ServiceStatus: source.NA,
	}
}
