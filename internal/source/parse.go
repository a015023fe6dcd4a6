package source

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Dicklesworthstone/rktop/internal/model"
)

// CoreTimes is one core's accounting from /proc/stat, in clock ticks.
type CoreTimes struct {
	Total uint64
	Idle  uint64
}

// NetCounters are absolute byte counters for one interface.
type NetCounters struct {
	RxBytes uint64
	TxBytes uint64
}

var (
	percentRe = regexp.MustCompile(`(\d+)%`)
	rgaLoadRe = regexp.MustCompile(`load = (\d+)%`)
	colonRe   = regexp.MustCompile(`:\s*(\S+)`)
)

// NoTemperatureData is the single row shown when no sensor could be read.
const NoTemperatureData = "No temperature data."

// ParseCPUStat extracts per-core counters from /proc/stat. Total is
// user+nice+system+idle+iowait+irq+softirq+steal (steal when present), Idle
// is the idle column alone. The aggregate "cpu " line is ignored, as are
// core lines that do not parse.
func ParseCPUStat(procStat string) (map[int]CoreTimes, error) {
	cores := make(map[int]CoreTimes)
	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 8 || !strings.HasPrefix(fields[0], "cpu") || fields[0] == "cpu" {
			continue
		}
		idx, err := strconv.Atoi(fields[0][3:])
		if err != nil {
			continue
		}

		n := 8
		if len(fields) > 8 {
			n = 9 // include steal
		}
		var total, idle uint64
		ok := true
		for i := 1; i < n; i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				ok = false
				break
			}
			total += val
			if i == 4 {
				idle = val
			}
		}
		if !ok {
			continue
		}
		cores[idx] = CoreTimes{Total: total, Idle: idle}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan /proc/stat: %w", err)
	}
	if len(cores) == 0 {
		return nil, errors.New("no per-core lines in /proc/stat")
	}
	return cores, nil
}

// ParseScaledInt parses a single integer and divides it by div, e.g. kHz to
// MHz with div 1000 or Hz to MHz with div 1e6.
func ParseScaledInt(raw string, div int64) (int, error) {
	raw = strings.TrimSpace(raw)
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frequency %q: %w", raw, err)
	}
	return int(val / div), nil
}

// ParseGPULoad reads a devfreq load line such as "37@300000000Hz". The load
// is the first field split on '@' or spaces, with an optional '%'.
func ParseGPULoad(raw string) (int, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(raw), func(r rune) bool {
		return r == '@' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return 0, errors.New("empty gpu load")
	}
	load, err := strconv.Atoi(strings.TrimSuffix(fields[0], "%"))
	if err != nil {
		return 0, fmt.Errorf("parse gpu load %q: %w", fields[0], err)
	}
	return load, nil
}

// ParsePercents returns every integer directly followed by '%', in order.
func ParsePercents(raw string) []int {
	return submatchInts(percentRe, raw, -1)
}

// ParseRGALoads returns up to three "load = N%" values from the RGA debug file.
func ParseRGALoads(raw string) []int {
	return submatchInts(rgaLoadRe, raw, 3)
}

func submatchInts(re *regexp.Regexp, raw string, limit int) []int {
	var out []int
	for _, m := range re.FindAllStringSubmatch(raw, limit) {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ParseTempToken turns a sensors value such as "+34.2°C" into 34. One leading
// character (the sign) and four trailing characters (".2°C") are cut before
// the number is parsed and truncated.
func ParseTempToken(tok string) (int, bool) {
	r := []rune(tok)
	if len(r) < 5 {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(r[1:len(r)-4]), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// ParseSensors walks `sensors` output. A line with no colon and a single
// token names the chip for the readings after it; "temp1:" and "Composite:"
// lines are the readings.
func ParseSensors(out string) []model.TempReading {
	var temps []model.TempReading
	current := ""
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if !strings.Contains(line, ":") && len(fields) == 1 {
			current = fields[0]
			continue
		}
		if !strings.HasPrefix(line, "temp1:") && !strings.HasPrefix(line, "Composite:") {
			continue
		}
		if len(fields) < 2 {
			continue
		}
		celsius, ok := ParseTempToken(fields[1])
		if !ok {
			temps = append(temps, model.TempReading{Raw: line})
			continue
		}
		name := current
		if name == "" {
			name = fields[0]
		}
		temps = append(temps, model.TempReading{
			Sensor:    name,
			Celsius:   celsius,
			Tier:      model.Classify(celsius, model.TempThresholds),
			Available: true,
		})
	}
	return temps
}

// ParseNetDev returns byte counters from /proc/net/dev for the interfaces
// keep accepts.
func ParseNetDev(procNetDev string, keep func(string) bool) (map[string]NetCounters, error) {
	out := make(map[string]NetCounters)
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if !keep(name) {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) < 9 {
			return nil, fmt.Errorf("short /proc/net/dev line for %s", name)
		}
		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse rx bytes for %s: %w", name, err)
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse tx bytes for %s: %w", name, err)
		}
		out[name] = NetCounters{RxBytes: rx, TxBytes: tx}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan /proc/net/dev: %w", err)
	}
	return out, nil
}

// ParseFstab returns the unique mount points of a filesystem table in order.
func ParseFstab(fstab string) []string {
	var mounts []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(fstab))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || seen[fields[1]] {
			continue
		}
		seen[fields[1]] = true
		mounts = append(mounts, fields[1])
	}
	return mounts
}

// ParseLsblk returns device names from two-column lsblk output whose second
// column equals want. With namePrefix set, names must also carry it.
func ParseLsblk(out, want, namePrefix string) []string {
	var names []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[1] != want {
			continue
		}
		if !strings.HasPrefix(fields[0], namePrefix) {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}

// ParseNVMeModel finds the model in `nvme id-ctrl` output, either under
// "Model Number" or the short "mn" key.
func ParseNVMeModel(out string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "mn" || strings.Contains(key, "Model Number") {
			if val = strings.TrimSpace(val); val != "" {
				return val, true
			}
		}
	}
	return "", false
}

// ParseSmartLogField returns the third whitespace field of the first
// `nvme smart-log` line containing key ("temperature : 35 C" gives "35").
func ParseSmartLogField(out, key string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, key) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return "", false
		}
		return fields[2], true
	}
	return "", false
}

// ParseSmartHealth extracts the overall verdict from `smartctl -H`.
func ParseSmartHealth(out string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "test result:") || strings.Contains(line, "Health Status:") {
			if m := colonRe.FindStringSubmatch(line); m != nil {
				return m[1], true
			}
		}
	}
	if m := colonRe.FindStringSubmatch(out); m != nil {
		return m[1], true
	}
	return "", false
}

// ParseSmartAttribute returns RAW_VALUE (the tenth column) of the named
// attribute in `smartctl -A` output.
func ParseSmartAttribute(out, name string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, name) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 10 {
			return "", false
		}
		return fields[9], true
	}
	return "", false
}

// FormatUptime renders d the way `uptime -p` does.
func FormatUptime(d time.Duration) string {
	minutes := int64(d / time.Minute)
	days := minutes / (24 * 60)
	minutes -= days * 24 * 60
	hours := minutes / 60
	minutes -= hours * 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return "up " + strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
