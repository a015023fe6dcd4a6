package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/rktop/internal/config"
	"github.com/Dicklesworthstone/rktop/internal/model"
	"github.com/Dicklesworthstone/rktop/internal/source"
)

const statFixture = `cpu  200 0 0 200 0 0 0 0 0 0
cpu0 100 0 0 100 0 0 0 0 0 0
cpu1 100 0 0 100 0 0 0 0 0 0
`

func fixtureSet(config.Config) source.Set {
	return source.Set{
		DeviceModel:   source.Static("rockchip,rk3588\x00"),
		ServiceStatus: source.Static("active"),
		CPUStat:       source.Static(statFixture),
		CoreCount:     source.FixedCoreCount(2),
		GPULoad:       source.Static("20@300000000Hz"),
		NetDev:        source.Static("  eth0: 1 0 0 0 0 0 0 0 1 0 0 0 0 0 0 0\n"),
	}
}

// isolate keeps the developer's environment and config file out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"RKTOP_INTERVAL", "RKTOP_SERVICE", "RKTOP_JSON", "RKTOP_JSON_STREAM", "RKTOP_DEBUG", "RKTOP_LOG_FILE"} {
		t.Setenv(k, "")
	}
	prevSet, prevTerm := newSet, isTerminal
	newSet = fixtureSet
	isTerminal = func() bool { return false }
	t.Cleanup(func() { newSet, isTerminal = prevSet, prevTerm })
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestConfigCmd_Defaults(t *testing.T) {
	isolate(t)
	out, err := execute(t, context.Background(), "config")
	require.NoError(t, err)
	assert.Contains(t, out, "interval: 500ms")
	assert.Contains(t, out, "service: docker")
	assert.Contains(t, out, "prefix: enP")
}

func TestConfigCmd_Layers(t *testing.T) {
	isolate(t)
	t.Setenv("RKTOP_SERVICE", "containerd")

	out, err := execute(t, context.Background(), "config", "--interval", "2s")
	require.NoError(t, err)
	assert.Contains(t, out, "interval: 2s")
	assert.Contains(t, out, "service: containerd")

	out, err = execute(t, context.Background(), "config", "--service", "podman")
	require.NoError(t, err)
	assert.Contains(t, out, "service: podman")
}

func TestConfigCmd_Invalid(t *testing.T) {
	isolate(t)
	_, err := execute(t, context.Background(), "config", "--interval", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval must be positive")
}

func TestRoot_Version(t *testing.T) {
	isolate(t)
	out, err := execute(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "rktop dev"))
}

func TestRoot_RequiresTerminal(t *testing.T) {
	isolate(t)
	_, err := execute(t, context.Background())
	assert.ErrorIs(t, err, errNoTerminal)
}

func TestRoot_JSON(t *testing.T) {
	isolate(t)
	out, err := execute(t, context.Background(), "--json", "--interval", "10ms")
	require.NoError(t, err)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "rockchip,rk3588", snap.Device.Model)
	require.Len(t, snap.Cores, 2)
	assert.True(t, snap.Cores[0].Load.Available)
	assert.Equal(t, 20, snap.GPU.Headline().Value)
	assert.Contains(t, snap.Network, "eth0")
}

func TestRoot_JSONModesExclusive(t *testing.T) {
	isolate(t)
	_, err := execute(t, context.Background(), "--json", "--json-stream")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

// cancelAfter cancels the command once it has written n lines.
type cancelAfter struct {
	bytes.Buffer
	lines  int
	n      int
	cancel context.CancelFunc
}

func (w *cancelAfter) Write(p []byte) (int, error) {
	w.lines += bytes.Count(p, []byte("\n"))
	if w.lines >= w.n {
		w.cancel()
	}
	return w.Buffer.Write(p)
}

func TestRoot_JSONStream(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &cancelAfter{n: 2, cancel: cancel}

	cmd := NewRootCmd()
	cmd.SetOut(w)
	cmd.SetArgs([]string{"--json-stream", "--interval", "10ms"})
	require.NoError(t, cmd.ExecuteContext(ctx))

	lines := strings.Split(strings.TrimSpace(w.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	for _, line := range lines {
		var snap model.Snapshot
		require.NoError(t, json.Unmarshal([]byte(line), &snap))
		assert.Len(t, snap.Cores, 2)
	}
}

func TestBindFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "rktop"}
	cmd.Flags().String("service", "docker", "")
	cmd.PersistentFlags().Bool("debug", false, "")

	v := viper.New()
	require.NoError(t, bindFlags(v, cmd, map[string]string{
		"service": "service",
		"debug":   "debug",
	}))
	require.NoError(t, cmd.Flags().Set("service", "ollama"))
	assert.Equal(t, "ollama", v.GetString("service"))

	err := bindFlags(viper.New(), cmd, map[string]string{"log_file": "logfile"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--logfile")
	assert.Panics(t, func() {
		mustBindFlags(viper.New(), cmd, map[string]string{"log_file": "logfile"})
	})
}
