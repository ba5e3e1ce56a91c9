package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/tx433/internal/protocol/txp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tx433.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.136", cfg.Gateway.IP)
	assert.Equal(t, 49880, cfg.Gateway.Port)
	assert.Equal(t, 2*time.Second, cfg.Gateway.WriteTimeout)
	assert.Equal(t, txp.DefaultConfig(), cfg.Wire)
	assert.Equal(t, "pt2262", cfg.LineCode)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Logging.File.Filename)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := writeConfig(t, `
gateway:
  ip: 10.0.0.5
  port: 5000
wire:
  repeat: 6
  unitTime: 300
logging:
  level: debug
`)
	t.Setenv("TX433_GATEWAY_PORT", "6000")

	fs := pflag.NewFlagSet("tx433", pflag.ContinueOnError)
	fs.String("ip", "192.168.1.136", "")
	fs.Int("port", 49880, "")
	require.NoError(t, fs.Parse([]string{"--ip", "10.0.0.9"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	// 命令行 > 环境变量 > 文件
	assert.Equal(t, "10.0.0.9", cfg.Gateway.IP)
	assert.Equal(t, 6000, cfg.Gateway.Port)
	assert.Equal(t, 6, cfg.Wire.Repeat)
	assert.Equal(t, 300, cfg.Wire.UnitTime)
	assert.Equal(t, txp.DefaultPause, cfg.Wire.Pause)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_UnsetFlagDoesNotOverrideFile(t *testing.T) {
	path := writeConfig(t, "gateway:\n  ip: 10.1.1.1\n")

	fs := pflag.NewFlagSet("tx433", pflag.ContinueOnError)
	fs.String("ip", "192.168.1.136", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "10.1.1.1", cfg.Gateway.IP)
}

func TestLoad_InvalidWire(t *testing.T) {
	path := writeConfig(t, "wire:\n  version: 7\n")
	_, err := Load(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, txp.ErrUnsupportedVersion)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/tx433.example.yaml", nil)
	require.NoError(t, err, "示例配置加载失败")

	assert.Equal(t, "tx433", cfg.App.Name)
	assert.Equal(t, txp.DefaultConfig(), cfg.Wire)
	assert.Equal(t, "configs/switches.example.yaml", cfg.Aliases.Path)
	assert.Equal(t, 5, cfg.API.RateLimit.PerSecond)
	assert.False(t, cfg.API.Auth.Enabled)
}
