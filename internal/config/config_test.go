package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.True(t, cfg.IsolateRuns)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Stages)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", `
output_dir: /tmp/artifacts
stages:
  denoise:
    h: 12
    search_window: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/artifacts", cfg.OutputDir)
	assert.True(t, cfg.IsolateRuns, "absent fields keep their defaults")
	assert.Equal(t, 12, cfg.Stages["denoise"]["h"])
	assert.Equal(t, 15, cfg.Stages["denoise"]["search_window"])
}

func TestLoadDisablesIsolation(t *testing.T) {
	path := writeFile(t, "pipeline.yml", "isolate_runs: false\ndebug: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.IsolateRuns)
	assert.True(t, cfg.Debug)
	assert.NotNil(t, cfg.Stages)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "pipeline.json", "{}"))
	assert.ErrorContains(t, err, "extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "stat")

	_, err = Load(writeFile(t, "broken.yaml", "stages: [not, a, map"))
	assert.ErrorContains(t, err, "parse")
}

func TestValidate(t *testing.T) {
	known := []string{"wavelet", "denoise"}

	cfg := Default()
	cfg.Stages["denoise"] = map[string]interface{}{"h": 5.0}
	assert.NoError(t, cfg.Validate(known))

	cfg.Stages["blur"] = map[string]interface{}{}
	assert.ErrorContains(t, cfg.Validate(known), "blur")

	cfg = Default()
	cfg.OutputDir = ""
	assert.ErrorContains(t, cfg.Validate(known), "output_dir")
}

func TestStageParams(t *testing.T) {
	cfg := Default()
	cfg.Stages["color"] = map[string]interface{}{"beta": 20.0}
	defaults := map[string]interface{}{"alpha": 1.2, "beta": 10.0}

	merged := cfg.StageParams("color", defaults)
	assert.Equal(t, map[string]interface{}{"alpha": 1.2, "beta": 20.0}, merged)
	assert.Equal(t, 10.0, defaults["beta"], "defaults are not modified")

	assert.Equal(t, defaults, cfg.StageParams("adjust", defaults))
}
