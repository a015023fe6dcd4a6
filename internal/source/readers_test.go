package source

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/rktop/internal/config"
	"github.com/Dicklesworthstone/rktop/internal/model"
)

func emptyReader() *Reader { return NewReader(Set{}, nil) }

func TestReader_Text(t *testing.T) {
	r := emptyReader()
	ctx := context.Background()

	v, ok := r.Text(ctx, "devicetree", Static("rockchip,rk3588s-orangepi-5\x00rockchip,rk3588\x00"))
	assert.True(t, ok)
	assert.Equal(t, "rockchip,rk3588s-orangepi-5rockchip,rk3588", v)

	v, ok = r.Text(ctx, "npu-version", Missing("no debugfs"))
	assert.False(t, ok)
	assert.Equal(t, NA, v)

	v, ok = r.Text(ctx, "blank", Static("  \n"))
	assert.False(t, ok)
	assert.Equal(t, NA, v)

	v, ok = r.Text(ctx, "nil", nil)
	assert.False(t, ok)
	assert.Equal(t, NA, v)
}

func TestReader_DeviceInfo(t *testing.T) {
	r := NewReader(Set{
		DeviceModel:   Static("radxa,rock-5b\x00"),
		NPUVersion:    Static("RKNPU driver: v0.9.6\n"),
		Uptime:        Static("up 3 hours, 2 minutes\n"),
		ServiceStatus: Missing("exit status 3"),
	}, nil)

	info := r.DeviceInfo(context.Background(), "docker")
	assert.Equal(t, model.DeviceInfo{
		Model:         "radxa,rock-5b",
		NPUVersion:    "RKNPU driver: v0.9.6",
		Uptime:        "up 3 hours, 2 minutes",
		Service:       "docker",
		ServiceStatus: NA,
	}, info)
	assert.False(t, info.ServiceActive())
}

func TestReader_Fallbacks(t *testing.T) {
	r := NewReader(Set{
		CPUStat: Missing("x"),
		CPUFreq: func(int) Source { return Missing("x") },
		GPULoad: Static("garbage"),
		GPUFreq: Missing("x"),
		NPULoad: Missing("x"),
		NPUFreq: Static("not a number"),
		RGALoad: Static("no loads here"),
		Sensors: Missing("x"),
		NetDev:  Missing("x"),
		Fstab:   Missing("x"),
		CoreCount: func(context.Context) (int, error) {
			return 0, errors.New("no sysconf")
		},
	}, nil)
	ctx := context.Background()

	_, ok := r.CPUTimes(ctx)
	assert.False(t, ok)

	freq, ok := r.CPUFreq(ctx, 0)
	assert.False(t, ok)
	assert.Zero(t, freq)

	load, ok := r.GPULoad(ctx)
	assert.False(t, ok)
	assert.Zero(t, load)

	mhz, ok := r.DevfreqMHz(ctx, "gpu-freq", r.set.GPUFreq)
	assert.False(t, ok)
	assert.Zero(t, mhz)

	mhz, ok = r.DevfreqMHz(ctx, "npu-freq", r.set.NPUFreq)
	assert.False(t, ok)
	assert.Zero(t, mhz)

	npu, ok := r.NPULoad(ctx)
	assert.False(t, ok)
	assert.Equal(t, []int{0, 0, 0}, npu)

	rga, ok := r.RGALoad(ctx)
	assert.False(t, ok)
	assert.Equal(t, []int{0, 0, 0}, rga)

	temps, ok := r.Temperatures(ctx)
	assert.False(t, ok)
	assert.Equal(t, []model.TempReading{{Raw: NoTemperatureData}}, temps)

	_, ok = r.NetCounters(ctx, func(string) bool { return true })
	assert.False(t, ok)

	fs, ok := r.Filesystems(ctx)
	assert.False(t, ok)
	assert.Empty(t, fs)

	_, ok = r.CoreCount(ctx)
	assert.False(t, ok)

	nvme, usb := r.BlockDevices(ctx)
	assert.Empty(t, nvme)
	assert.Empty(t, usb)

	m := r.Memory(ctx)
	assert.False(t, m.RAM.Available)
	assert.False(t, m.Swap.Available)
}

func TestReader_Values(t *testing.T) {
	r := NewReader(Set{
		CPUStat:   Static(procStatFixture),
		CPUFreq:   func(core int) Source { return Static([]string{"1800000", "408000"}[core]) },
		CoreCount: FixedCoreCount(8),
		GPULoad:   Static("37@300000000Hz"),
		GPUFreq:   Static("300000000\n"),
		NPULoad:   Static("NPU load:  Core0: 12%, Core1:  0%, Core2: 87%,"),
		NPUFreq:   Static("1000000000"),
		RGALoad:   Static("load = 5%\nload = 6%\n"),
		Sensors:   Static(sensorsFixture),
		NetDev:    Static(netDevFixture),
	}, nil)
	ctx := context.Background()

	cores, ok := r.CPUTimes(ctx)
	require.True(t, ok)
	assert.Len(t, cores, 2)

	n, ok := r.CoreCount(ctx)
	require.True(t, ok)
	assert.Equal(t, 8, n)

	freq, ok := r.CPUFreq(ctx, 0)
	require.True(t, ok)
	assert.Equal(t, 1800, freq)
	freq, _ = r.CPUFreq(ctx, 1)
	assert.Equal(t, 408, freq)

	load, ok := r.GPULoad(ctx)
	require.True(t, ok)
	assert.Equal(t, 37, load)

	mhz, ok := r.DevfreqMHz(ctx, "gpu-freq", r.set.GPUFreq)
	require.True(t, ok)
	assert.Equal(t, 300, mhz)
	mhz, _ = r.DevfreqMHz(ctx, "npu-freq", r.set.NPUFreq)
	assert.Equal(t, 1000, mhz)

	npu, ok := r.NPULoad(ctx)
	require.True(t, ok)
	assert.Equal(t, []int{12, 0, 87}, npu)

	rga, ok := r.RGALoad(ctx)
	require.True(t, ok)
	assert.Equal(t, []int{5, 6}, rga)

	temps, ok := r.Temperatures(ctx)
	require.True(t, ok)
	assert.Len(t, temps, 5)

	counters, ok := r.NetCounters(ctx, config.Default().Net.Match)
	require.True(t, ok)
	assert.Equal(t, map[string]NetCounters{
		"eth0":      {RxBytes: 9876543, TxBytes: 5678901},
		"enP4p65s0": {RxBytes: 125000, TxBytes: 62500},
	}, counters)
}

func TestReader_Memory(t *testing.T) {
	r := NewReader(Set{
		VirtualMemory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 8 << 30, Used: 3 << 30}, nil
		},
		SwapMemory: func(context.Context) (*mem.SwapMemoryStat, error) {
			return nil, errors.New("no swap accounting")
		},
	}, nil)

	m := r.Memory(context.Background())
	assert.Equal(t, model.Usage{Used: 3 << 30, Total: 8 << 30, Available: true}, m.RAM)
	assert.False(t, m.Swap.Available)
}

func TestReader_Filesystems(t *testing.T) {
	r := NewReader(Set{
		Fstab: Static("UUID=1 / ext4 defaults 0 1\n/swapfile none swap sw 0 0\n"),
		DiskUsage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			if path != "/" {
				return nil, errors.New("no such file or directory")
			}
			return &disk.UsageStat{Path: "/", Total: 100, Used: 40, Free: 60}, nil
		},
	}, nil)

	rows, ok := r.Filesystems(context.Background())
	require.True(t, ok)
	assert.Equal(t, []model.FilesystemUsage{
		{Mount: "/", Total: 100, Used: 40, Free: 60, Available: true},
		{Mount: "none"},
	}, rows)
}

func TestReader_Storage(t *testing.T) {
	r := NewReader(Set{
		BlockTypes:      Static("mmcblk0 disk\nnvme0n1 disk\n"),
		BlockTransports: Static("nvme0n1 nvme\nsda usb\n"),
		NVMeIdentify:    func(string) Source { return Static("mn : Samsung SSD 980 1TB\n") },
		NVMeSmartLog:    func(string) Source { return Static(smartLogFixture) },
		BlockModel:      func(string) Source { return Static("Extreme SSD\n") },
		SmartHealth:     func(string) Source { return Missing("smartctl not installed") },
		SmartAttributes: func(string) Source {
			return Static("194 Temperature_Celsius 0x0022 067 051 000 Old_age Always - 33\n")
		},
	}, nil)
	ctx := context.Background()

	nvme, usb := r.BlockDevices(ctx)
	require.Equal(t, []string{"nvme0n1"}, nvme)
	require.Equal(t, []string{"sda"}, usb)

	assert.Equal(t, model.StorageDevice{
		Name:         "nvme0n1",
		Model:        "Samsung SSD 980 1TB",
		Temp:         "38",
		PowerOnHours: "1,734",
		PercentUsed:  "3",
	}, r.NVMeDevice(ctx, "nvme0n1"))

	assert.Equal(t, model.StorageDevice{
		Name:         "sda",
		Model:        "Extreme SSD",
		Health:       "Unknown",
		Temp:         "33",
		PowerOnHours: NA,
	}, r.USBDevice(ctx, "sda"))
}

func TestReader_StorageFallbacks(t *testing.T) {
	r := emptyReader()
	ctx := context.Background()

	assert.Equal(t, model.StorageDevice{
		Name: "nvme0n1", Model: "Unknown", Temp: NA, PowerOnHours: NA, PercentUsed: "0",
	}, r.NVMeDevice(ctx, "nvme0n1"))
	assert.Equal(t, model.StorageDevice{
		Name: "sda", Model: "Unknown", Health: "Unknown", Temp: NA, PowerOnHours: NA,
	}, r.USBDevice(ctx, "sda"))
}

func TestNewSet_Paths(t *testing.T) {
	cfg := config.Default()
	set := NewSet(cfg)

	assert.Equal(t, File("/proc/stat"), set.CPUStat)
	assert.Equal(t, File("/sys/devices/system/cpu/cpu3/cpufreq/scaling_cur_freq"), set.CPUFreq(3))
	assert.Equal(t, File("/sys/class/devfreq/fb000000.gpu/load"), set.GPULoad)
	assert.Equal(t, File("/sys/class/devfreq/fdab0000.npu/cur_freq"), set.NPUFreq)
	assert.Equal(t, File("/sys/kernel/debug/rknpu/load"), set.NPULoad)
	assert.Equal(t, File("/sys/kernel/debug/rkrga/load"), set.RGALoad)
	assert.Equal(t, Cmd(cfg.CommandTimeout, "systemctl", "is-active", "docker"), set.ServiceStatus)
	assert.Equal(t, Cmd(cfg.CommandTimeout, "smartctl", "-A", "/dev/sda"), set.SmartAttributes("sda"))
}
