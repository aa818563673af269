package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/adbocr/commands"
	"github.com/mobile-next/adbocr/config"
	"github.com/mobile-next/adbocr/daemon"
	"github.com/mobile-next/adbocr/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		n       int
		want    []int
		wantErr bool
	}{
		{"tap", "100,200", 2, []int{100, 200}, false},
		{"spaces", " 1 , 2 ", 2, []int{1, 2}, false},
		{"swipe", "0,900,0,100", 4, []int{0, 900, 0, 100}, false},
		{"negative", "-1,5", 2, []int{-1, 5}, false},
		{"too few", "100", 2, nil, true},
		{"too many", "1,2,3", 2, nil, true},
		{"not a number", "a,2", 2, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCoordinates(tt.value, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSwipeDuration(t *testing.T) {
	tests := []struct {
		name       string
		durationMs int
		wantErr    bool
	}{
		{"default", defaultSwipeDurationMs, false},
		{"one", 1, false},
		{"zero", 0, true},
		{"negative", -100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSwipeDuration(tt.durationMs)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIoSwipe_ZeroDurationFailsBeforeConnecting(t *testing.T) {
	saved := swipeDurationMs
	t.Cleanup(func() { swipeDurationMs = saved })
	swipeDurationMs = 0

	err := ioSwipeCmd.RunE(ioSwipeCmd, []string{"0,900,0,100"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "swipe duration must be positive")
}

func newDeviceCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addDeviceFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestSessionRequest_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Width = 540
	cfg.Device.Height = 960

	req := sessionRequest(newDeviceCommand(t, nil), cfg)
	assert.Equal(t, commands.SessionRequest{Host: "localhost", Port: 5555, Width: 540, Height: 960}, req)
}

func TestSessionRequest_FlagsOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Device.Serial = "emulator-5554"
	cfg.Device.Density = 320

	req := sessionRequest(newDeviceCommand(t, map[string]string{
		"host":    "10.0.0.2",
		"port":    "5557",
		"density": "480",
	}), cfg)

	assert.Equal(t, "10.0.0.2", req.Host)
	assert.Equal(t, 5557, req.Port)
	assert.Empty(t, req.Serial, "host flag replaces the configured serial")
	assert.Equal(t, 480, req.Density)
}

func TestSessionRequest_SerialFlag(t *testing.T) {
	req := sessionRequest(newDeviceCommand(t, map[string]string{"serial": "R58M123"}), config.Default())
	assert.Equal(t, "R58M123", req.Serial)

	host, port, err := req.Target()
	require.NoError(t, err)
	assert.Equal(t, "R58M123", host)
	assert.Equal(t, 0, port)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(daemon.DaemonEnvVar, "")

	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, writeFile(path, "[device]\nport = 5600\n"))

	configPath = path
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5600, cfg.Device.Port)
}

func TestLoadConfig_DaemonChildUsesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, writeFile(path, "[device]\nport = 5601\n"))

	t.Setenv(daemon.DaemonEnvVar, "1")
	t.Setenv(ConfigEnvVar, path)
	configPath = "relative.ini"
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5601, cfg.Device.Port)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"io", "tap"},
		{"io", "swipe"},
		{"io", "back"},
		{"io", "click-text"},
		{"screen", "text"},
		{"screen", "screenshot"},
		{"screen", "info"},
		{"devices"},
		{"server", "start"},
		{"server", "kill"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, "%v", path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
