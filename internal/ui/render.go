package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Dicklesworthstone/rktop/internal/model"
	"github.com/Dicklesworthstone/rktop/internal/source"
)

var separator = strings.Repeat("─", 50)

// Render lays a snapshot out as the dashboard's lines, top to bottom.
func Render(s model.Snapshot) []string {
	var lines []string
	add := func(l ...string) { lines = append(lines, l...) }
	sep := headerStyle.Render(separator)

	add(sep, headerStyle.Render("rktop system monitor")+"  "+subtleStyle.Render(s.Timestamp.Format("15:04:05")), sep)

	add(deviceLines(s.Device)...)
	add(sep)

	add(titleStyle.Render("CPU Usage & Frequency:"))
	add(coreLines(s.Cores)...)
	add(sep)

	add(titleStyle.Render("GPU Load: ") + loadText(s.GPU.Headline()) + "   " + freqText(s.GPU.Freq, " MHz"))
	add(sep)
	add(titleStyle.Render("NPU Load: ") + loadList(s.NPU.Loads) + "   " + freqText(s.NPU.Freq, " MHz"))
	add(sep)
	add(titleStyle.Render("RGA Load: ") + loadList(s.RGA.Loads))
	add(sep)

	add(titleStyle.Render("RAM & Swap Usage:"))
	add(textStyle.Render("RAM Used: "+usageText(s.Memory.RAM)), textStyle.Render("Swap Used: "+usageText(s.Memory.Swap)))
	add(sep)

	add(titleStyle.Render("Temperatures:"))
	for _, t := range s.Temps {
		if !t.Available {
			add(textStyle.Render(t.Raw))
			continue
		}
		add(tempStyle(t.Tier).Render(fmt.Sprintf("%-30s %2d°C", t.Sensor, t.Celsius)))
	}
	add(sep)

	for _, name := range s.Interfaces() {
		r := s.Network[name]
		add(titleStyle.Render(fmt.Sprintf("Net (%s): Down %.2f Mbps | Up %.2f Mbps", name, r.DownMbps, r.UpMbps)))
	}
	add(sep)

	add(titleStyle.Render("Storage Usage (fstab):"))
	add(filesystemLines(s.Filesystems)...)
	add(sep)

	add(titleStyle.Render("NVMe & USB Storage Info:"))
	add(storageLines("NVMe Devices:", "No NVMe devices detected.", s.Storage.NVMe)...)
	add(storageLines("USB Storage Devices:", "No USB storage devices detected.", s.Storage.USB)...)
	add(sep)

	add(footerStyle.Render("Press 'q' to exit. Use arrows or mouse to scroll."))
	return lines
}

func deviceLines(d model.DeviceInfo) []string {
	lines := []string{
		textStyle.Render("Device: " + d.Model),
		textStyle.Render("NPU Version: " + d.NPUVersion),
		textStyle.Render("System Uptime: " + d.Uptime),
	}
	if d.ServiceActive() {
		return append(lines, goodStyle.Render(fmt.Sprintf("Service %s: Running", d.Service)))
	}
	return append(lines, badStyle.Render(fmt.Sprintf("Service %s: Not Running", d.Service)))
}

// coreLines puts two cores on each row.
func coreLines(cores []model.CoreReading) []string {
	var lines []string
	for i := 0; i < len(cores); i += 2 {
		row := coreText(cores[i])
		if i+1 < len(cores) {
			row += "   " + coreText(cores[i+1])
		}
		lines = append(lines, row)
	}
	return lines
}

func coreText(c model.CoreReading) string {
	return textStyle.Render(fmt.Sprintf("Core %d: ", c.Index)) + loadText(c.Load) + " " + freqText(c.Freq, "MHz")
}

func loadText(l model.LoadReading) string {
	return loadStyle(l.Tier).Render(fmt.Sprintf("%3d%%", l.Value))
}

func loadList(loads []model.LoadReading) string {
	parts := make([]string, len(loads))
	for i, l := range loads {
		parts[i] = loadStyle(l.Tier).Render(fmt.Sprintf("%d%%", l.Value))
	}
	return strings.Join(parts, textStyle.Render(", "))
}

func freqText(f model.FreqReading, unit string) string {
	return freqStyle.Render(fmt.Sprintf("%4d%s", f.MHz, unit))
}

func usageText(u model.Usage) string {
	if !u.Available {
		return source.NA + " / " + source.NA
	}
	return humanize.IBytes(u.Used) + " / " + humanize.IBytes(u.Total)
}

func filesystemLines(rows []model.FilesystemUsage) []string {
	lines := []string{textStyle.Render(fmt.Sprintf("%-20s %10s %10s %10s", "Mount Point", "Total", "Used", "Free"))}
	for _, r := range rows {
		if !r.Available {
			lines = append(lines, textStyle.Render(r.Mount+": No info"))
			continue
		}
		lines = append(lines, textStyle.Render(fmt.Sprintf("%-20s %10s %10s %10s",
			r.Mount, humanize.IBytes(r.Total), humanize.IBytes(r.Used), humanize.IBytes(r.Free))))
	}
	return lines
}

func storageLines(title, none string, devs []model.StorageDevice) []string {
	if len(devs) == 0 {
		return []string{badStyle.Render(none)}
	}
	lines := []string{goodStyle.Render(title)}
	for _, d := range devs {
		line := fmt.Sprintf("%s - %s | Temp: %s°C | Hours: %s", d.Name, d.Model, d.Temp, d.PowerOnHours)
		if d.PercentUsed != "" {
			line += fmt.Sprintf(" | Used: %s%%", d.PercentUsed)
		}
		if d.Health != "" {
			line += " | Health: " + d.Health
		}
		lines = append(lines, textStyle.Render(line))
	}
	return lines
}
