package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"COOKFILE_BASE_URL", "COOKFILE_CODEC", "PORT", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_CreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cook-viewer.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cook-viewer.yaml")
	data := `
remote:
  base_url: http://smoker.local:9000
  codec: msgpack
  timeout_seconds: 5
media:
  dir: media
selection:
  verify_toggle: false
logging:
  file: logs/viewer.log
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://smoker.local:9000", cfg.Remote.BaseURL)
	assert.Equal(t, "msgpack", cfg.Remote.Codec)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.False(t, cfg.Selection.VerifyToggle)
	assert.Equal(t, filepath.Join(dir, "media"), cfg.Media.Dir)
	assert.Equal(t, filepath.Join(dir, "logs/viewer.log"), cfg.Logging.File)

	// unset keys keep their defaults
	assert.Equal(t, "/cookfiledata", cfg.Remote.ReadPath)
	assert.Equal(t, "/static/img/cookfile/", cfg.Media.ImagePath)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("COOKFILE_BASE_URL", "http://10.0.0.2:8089")
	t.Setenv("COOKFILE_CODEC", "MSGPACK")
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "cook-viewer.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8089", cfg.Remote.BaseURL)
	assert.Equal(t, "msgpack", cfg.Remote.Codec)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9100", cfg.GetServerAddr())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "remote: [\n"},
		{"bad codec", "remote:\n  codec: xml\n"},
		{"inverted bounds", "chart:\n  y_min: 100\n  y_max: 50\n"},
		{"image path without slash", "media:\n  image_path: static/img\n"},
		{"negative timeout", "remote:\n  timeout_seconds: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cook-viewer.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
