package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. RKTOP_INTERVAL.
const EnvPrefix = "RKTOP"

// Config carries runtime options for rktop.
type Config struct {
	Interval       time.Duration `mapstructure:"interval" yaml:"interval"`
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	Service        string        `mapstructure:"service" yaml:"service"`
	Net            Net           `mapstructure:"net" yaml:"net"`
	Paths          Paths         `mapstructure:"paths" yaml:"paths"`
	JSON           bool          `mapstructure:"json" yaml:"json"`
	JSONStream     bool          `mapstructure:"json_stream" yaml:"json_stream"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	Debug          bool          `mapstructure:"debug" yaml:"debug"`
}

// Net selects which interfaces get throughput rows.
type Net struct {
	Names  []string `mapstructure:"names" yaml:"names"`
	Prefix string   `mapstructure:"prefix" yaml:"prefix"`
}

// Match reports whether iface is watched: an exact name or the prefix.
func (n Net) Match(iface string) bool {
	for _, name := range n.Names {
		if iface == name {
			return true
		}
	}
	return n.Prefix != "" && strings.HasPrefix(iface, n.Prefix)
}

// Paths are the kernel files read each tick. CPUFreq is a format string
// taking the core index.
type Paths struct {
	ProcStat   string `mapstructure:"proc_stat" yaml:"proc_stat"`
	NetDev     string `mapstructure:"net_dev" yaml:"net_dev"`
	CPUFreq    string `mapstructure:"cpufreq" yaml:"cpufreq"`
	GPUDevfreq string `mapstructure:"gpu_devfreq" yaml:"gpu_devfreq"`
	NPUDevfreq string `mapstructure:"npu_devfreq" yaml:"npu_devfreq"`
	NPUDebug   string `mapstructure:"npu_debug" yaml:"npu_debug"`
	RGADebug   string `mapstructure:"rga_debug" yaml:"rga_debug"`
	DeviceTree string `mapstructure:"devicetree" yaml:"devicetree"`
	Fstab      string `mapstructure:"fstab" yaml:"fstab"`
}

func Default() Config {
	return Config{
		Interval:       500 * time.Millisecond,
		CommandTimeout: 2 * time.Second,
		Service:        "docker",
		Net: Net{
			Names:  []string{"eth0"},
			Prefix: "enP",
		},
		Paths: Paths{
			ProcStat:   "/proc/stat",
			NetDev:     "/proc/net/dev",
			CPUFreq:    "/sys/devices/system/cpu/cpu%d/cpufreq/scaling_cur_freq",
			GPUDevfreq: "/sys/class/devfreq/fb000000.gpu",
			NPUDevfreq: "/sys/class/devfreq/fdab0000.npu",
			NPUDebug:   "/sys/kernel/debug/rknpu",
			RGADebug:   "/sys/kernel/debug/rkrga",
			DeviceTree: "/sys/firmware/devicetree/base/compatible",
			Fstab:      "/etc/fstab",
		},
	}
}

// SetDefaults registers every default with v so env and file values merge
// over them key by key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("interval", d.Interval)
	v.SetDefault("command_timeout", d.CommandTimeout)
	v.SetDefault("service", d.Service)
	v.SetDefault("net.names", d.Net.Names)
	v.SetDefault("net.prefix", d.Net.Prefix)
	v.SetDefault("paths.proc_stat", d.Paths.ProcStat)
	v.SetDefault("paths.net_dev", d.Paths.NetDev)
	v.SetDefault("paths.cpufreq", d.Paths.CPUFreq)
	v.SetDefault("paths.gpu_devfreq", d.Paths.GPUDevfreq)
	v.SetDefault("paths.npu_devfreq", d.Paths.NPUDevfreq)
	v.SetDefault("paths.npu_debug", d.Paths.NPUDebug)
	v.SetDefault("paths.rga_debug", d.Paths.RGADebug)
	v.SetDefault("paths.devicetree", d.Paths.DeviceTree)
	v.SetDefault("paths.fstab", d.Paths.Fstab)
	v.SetDefault("json", d.JSON)
	v.SetDefault("json_stream", d.JSONStream)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("debug", d.Debug)
}

// NewViper returns a viper instance with defaults and RKTOP_* environment
// overrides wired up. Nested keys map to RKTOP_NET_PREFIX and so on.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the YAML file at path into v. An empty path falls back to
// the per-user config file, which is optional.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		path = DefaultFile()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// DefaultFile is $XDG_CONFIG_HOME/rktop/config.yaml or ~/.config/rktop/config.yaml.
func DefaultFile() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rktop", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rktop", "config.yaml")
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the sampler cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.CommandTimeout <= 0 {
		errs = append(errs, fmt.Errorf("command_timeout must be positive, got %s", c.CommandTimeout))
	}
	if c.JSON && c.JSONStream {
		errs = append(errs, errors.New("json and json_stream are mutually exclusive"))
	}
	return errors.Join(errs...)
}
