package model

import (
	"sort"
	"time"
)

// LoadReading is a classified utilisation percentage.
type LoadReading struct {
	Value     int  `json:"value"`
	Tier      Tier `json:"tier"`
	Available bool `json:"available"`
}

// FreqReading is a clock frequency in MHz.
type FreqReading struct {
	MHz       int  `json:"mhz"`
	Available bool `json:"available"`
}

// CoreReading pairs one CPU core's load with its current frequency.
type CoreReading struct {
	Index int         `json:"index"`
	Load  LoadReading `json:"load"`
	Freq  FreqReading `json:"freq"`
}

// Accelerator covers the GPU, NPU and RGA blocks. Devices with several
// concurrent cores report one load per core, in the order the kernel lists them.
type Accelerator struct {
	Name  string        `json:"name"`
	Loads []LoadReading `json:"loads"`
	Freq  FreqReading   `json:"freq"`
}

// Headline returns the load used to colour the whole block.
func (a Accelerator) Headline() LoadReading {
	if len(a.Loads) == 0 {
		return LoadReading{}
	}
	return a.Loads[0]
}

// Usage is a used/total pair in bytes.
type Usage struct {
	Used      uint64 `json:"used"`
	Total     uint64 `json:"total"`
	Available bool   `json:"available"`
}

// Memory captures RAM and swap usage.
type Memory struct {
	RAM  Usage `json:"ram"`
	Swap Usage `json:"swap"`
}

// TempReading is one thermal sensor row. Rows that could not be parsed keep
// only Raw text and are not classified.
type TempReading struct {
	Sensor    string `json:"sensor,omitempty"`
	Celsius   int    `json:"celsius"`
	Tier      Tier   `json:"tier"`
	Available bool   `json:"available"`
	Raw       string `json:"raw,omitempty"`
}

// NetRate is interface throughput in megabits per second.
type NetRate struct {
	DownMbps float64 `json:"down_mbps"`
	UpMbps   float64 `json:"up_mbps"`
}

// FilesystemUsage is one filesystem-table mount point.
type FilesystemUsage struct {
	Mount     string `json:"mount"`
	Total     uint64 `json:"total"`
	Used      uint64 `json:"used"`
	Free      uint64 `json:"free"`
	Available bool   `json:"available"`
}

// StorageDevice is a health row for an NVMe or USB-attached disk. Values are
// kept as the tools print them.
type StorageDevice struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	Health       string `json:"health,omitempty"`
	Temp         string `json:"temp"`
	PowerOnHours string `json:"power_on_hours"`
	PercentUsed  string `json:"percent_used,omitempty"`
}

// Storage groups discovered block devices by attachment.
type Storage struct {
	NVMe []StorageDevice `json:"nvme"`
	USB  []StorageDevice `json:"usb"`
}

// DeviceInfo holds the identity strings shown in the header.
type DeviceInfo struct {
	Model         string `json:"model"`
	NPUVersion    string `json:"npu_version"`
	Uptime        string `json:"uptime"`
	Service       string `json:"service"`
	ServiceStatus string `json:"service_status"`
}

// ServiceActive reports whether the watched unit is running.
func (d DeviceInfo) ServiceActive() bool { return d.ServiceStatus == "active" }

// Snapshot is everything produced by one tick. A new Snapshot is built every
// tick; nothing holds on to and mutates an old one.
type Snapshot struct {
	Timestamp   time.Time          `json:"timestamp"`
	Interval    time.Duration      `json:"interval"`
	Device      DeviceInfo         `json:"device"`
	Cores       []CoreReading      `json:"cores"`
	GPU         Accelerator        `json:"gpu"`
	NPU         Accelerator        `json:"npu"`
	RGA         Accelerator        `json:"rga"`
	Memory      Memory             `json:"memory"`
	Temps       []TempReading      `json:"temps"`
	Network     map[string]NetRate `json:"network"`
	Filesystems []FilesystemUsage  `json:"filesystems"`
	Storage     Storage            `json:"storage"`
}

// Interfaces returns the network interface names in sorted order.
func (s Snapshot) Interfaces() []string {
	names := make([]string, 0, len(s.Network))
	for name := range s.Network {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Zero returns an empty snapshot for initialization.
func Zero() Snapshot {
	return Snapshot{Timestamp: time.Now(), Network: map[string]NetRate{}}
}
