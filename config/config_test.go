package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, cfg.Device.Host)
	assert.Equal(t, DefaultPort, cfg.Device.Port)
	assert.True(t, cfg.Device.Scan)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
}

func TestLoad_WithFixture(t *testing.T) {
	path := writeConfig(t, `[device]
host = 10.0.0.7
port = 5557
width = 540
height = 960
density = 320
adb_path = /opt/platform-tools/adb
timeout = 3s
scan = false

[ocr]
languages = eng, chi_sim
level = word
psm = 11
whitelist = 0123456789

[server]
listen = 0.0.0.0:13000
cors = true
max_sessions = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7", cfg.Device.Host)
	assert.Equal(t, 5557, cfg.Device.Port)
	assert.Equal(t, 540, cfg.Device.Width)
	assert.Equal(t, 960, cfg.Device.Height)
	assert.Equal(t, 320, cfg.Device.Density)
	assert.Equal(t, "/opt/platform-tools/adb", cfg.Device.AdbPath)
	assert.Equal(t, 3*time.Second, cfg.Device.Timeout)
	assert.False(t, cfg.Device.Scan)

	assert.Equal(t, []string{"eng", "chi_sim"}, cfg.OCR.Languages)
	assert.Equal(t, "word", cfg.OCR.Level)
	assert.Equal(t, 11, cfg.OCR.PSM)
	assert.Equal(t, "0123456789", cfg.OCR.Whitelist)

	assert.Equal(t, "0.0.0.0:13000", cfg.Server.Listen)
	assert.True(t, cfg.Server.CORS)
	assert.Equal(t, 2, cfg.Server.MaxSessions)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "[device]\nport = 5565\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5565, cfg.Device.Port)
	assert.Equal(t, DefaultHost, cfg.Device.Host)
	assert.Equal(t, DefaultTimeout, cfg.Device.Timeout)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative width", "[device]\nwidth = -1\nheight = 10\n"},
		{"width without height", "[device]\nwidth = 540\n"},
		{"bad level", "[ocr]\nlevel = symbol\n"},
		{"zero sessions", "[server]\nmax_sessions = 0\n"},
		{"port out of range", "[device]\nport = 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	assert.Equal(t, filepath.Join(tmpHome, ".adbocr", "config.ini"), DefaultPath())
}
