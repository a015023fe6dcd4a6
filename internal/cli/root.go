package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Dicklesworthstone/rktop/internal/config"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with a fresh viper instance.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()
	var cfgFile string
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "rktop",
		Short: "Live dashboard for Rockchip single-board computers",
		Long: `rktop samples CPU, GPU, NPU and RGA load, memory, temperatures, network
throughput and storage health every interval and shows them in a scrollable
terminal view.

Examples:
  rktop
  rktop --interval 1s --service containerd
  rktop --json
  rktop --json-stream | jq .network`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.SetVersionTemplate("rktop {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/rktop/config.yaml)")
	pf.Duration("interval", d.Interval, "refresh period")
	pf.String("service", d.Service, "systemd unit shown in the header")
	pf.String("log-file", "", "append logs to this file")
	pf.Bool("debug", false, "log at debug level")

	f := cmd.Flags()
	f.Bool("json", false, "print one snapshot as JSON and exit")
	f.Bool("json-stream", false, "print one JSON snapshot per line until interrupted")

	mustBindFlags(v, cmd, map[string]string{
		"interval":    "interval",
		"service":     "service",
		"log_file":    "log-file",
		"debug":       "debug",
		"json":        "json",
		"json_stream": "json-stream",
	})

	cmd.AddCommand(newConfigCmd(v, &cfgFile))
	return cmd
}

// bindFlags maps config keys onto flag names. An unknown flag name is an
// error.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			return fmt.Errorf("bind %s: no flag named --%s", key, name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func mustBindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	if err := bindFlags(v, cmd, keys); err != nil {
		panic(err)
	}
}

func loadConfig(v *viper.Viper, path string) (config.Config, error) {
	if err := config.ReadFile(v, path); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
