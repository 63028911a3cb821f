package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := initConfig()
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5, cfg.PVSS.Shareholders)
	assert.Equal(t, 3, cfg.PVSS.Threshold)
	assert.Equal(t, MinPaillierBits, cfg.PVSS.PaillierBits)
	assert.Equal(t, 65537, cfg.RSA.PublicExponent)
	assert.Equal(t, time.Second, cfg.Signing.ThrottleInterval)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestYAMLConfig(t *testing.T) {
	yml := `
log:
  level: debug
  format: json
pvss:
  shareholders: 7
  threshold: 4
rsa:
  servers: 18
  threshold: 10
  modulus_bits: 1024
signing:
  throttle_interval: 250ms
metrics:
  enabled: true
  pull_endpoint: localhost:9100
`
	cfg, err := initConfig(rawbytes.Provider([]byte(yml)))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 7, cfg.PVSS.Shareholders)
	assert.Equal(t, 4, cfg.PVSS.Threshold)
	assert.Equal(t, MinPaillierBits, cfg.PVSS.PaillierBits, "unset keys keep their default")
	assert.Equal(t, 18, cfg.RSA.Servers)
	assert.Equal(t, 10, cfg.RSA.Threshold)
	assert.Equal(t, 1024, cfg.RSA.ModulusBits)
	assert.Equal(t, 250*time.Millisecond, cfg.Signing.ThrottleInterval)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "localhost:9100", cfg.Metrics.PullEndpoint)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PVSS_RSA__SERVERS", "9")
	t.Setenv("PVSS_LOG__LEVEL", "warn")

	cfg, err := initConfig(rawbytes.Provider([]byte("rsa:\n  servers: 4\n")))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.RSA.Servers)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pvss.yml")
	require.NoError(t, os.WriteFile(path, []byte("pvss:\n  shareholders: 2\n  threshold: 2\n"), 0o600))

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.PVSS.Shareholders)

	_, err = InitConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := map[string]string{
		"log format":          "log:\n  format: xml\n",
		"log level":           "log:\n  level: loud\n",
		"pvss threshold":      "pvss:\n  threshold: 6\n",
		"paillier bits":       "pvss:\n  paillier_bits: 1024\n",
		"rsa threshold":       "rsa:\n  threshold: 0\n",
		"rsa modulus":         "rsa:\n  modulus_bits: 512\n",
		"rsa exponent":        "rsa:\n  public_exponent: 3\n",
		"throttle":            "signing:\n  throttle_interval: -1s\n",
		"metrics endpoint":    "metrics:\n  enabled: true\n  pull_endpoint: \"\"\n",
		"zero shareholders":   "pvss:\n  shareholders: 0\n",
		"zero rsa servers":    "rsa:\n  servers: 0\n",
		"unparsable duration": "signing:\n  throttle_interval: soon\n",
	}
	for name, yml := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := initConfig(rawbytes.Provider([]byte(yml)))
			assert.Error(t, err)
		})
	}
}
