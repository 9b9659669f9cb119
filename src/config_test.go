package wsprcodex

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	var path = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	var path = writeTestConfig(t, t.TempDir(), "test.yaml", `
log_level: debug
timestamp_format: "%H:%M"
mqtt:
  broker: tcp://broker.example:1883
  qos: 1
server:
  listen: "127.0.0.1:9000"
  dns_sd: true
`)

	var cfg, used, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "%H:%M", cfg.TimestampFormat)
	assert.Equal(t, "tcp://broker.example:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "wsprcodex", cfg.MQTT.TopicPrefix, "default kept when the file doesn't set it")
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.True(t, cfg.Server.DNSSD)
}

func TestLoadConfigSearch(t *testing.T) {
	var dir = t.TempDir()
	writeTestConfig(t, dir, "wsprcodex.yaml", "log_level: info\n")

	var wd, wdErr = os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var cfg, used, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "wsprcodex.yaml", used)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	var dir = t.TempDir()

	var _, _, missingErr = LoadConfig(filepath.Join(dir, "nope.yaml"))
	require.ErrorIs(t, missingErr, fs.ErrNotExist)

	var bad = writeTestConfig(t, dir, "bad.yaml", "mqtt: [not, a, map\n")

	var _, _, badErr = LoadConfig(bad)
	require.Error(t, badErr)
	assert.Contains(t, badErr.Error(), bad)
}

func TestDefaultConfig(t *testing.T) {
	var cfg = DefaultConfig()

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":8073", cfg.Server.Listen)
	assert.False(t, cfg.Server.DNSSD)
	assert.Empty(t, cfg.MQTT.Broker)
}
