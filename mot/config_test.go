package mot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/correlation"
	"github.com/LdDl/vmot/motion"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigsAreValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, DefaultIOUConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"threshold above one":      func(c *Config) { c.OverlapThreshold = 1.5 },
		"negative weight":          func(c *Config) { c.ScaleWeight = -1 },
		"all weights zero":         func(c *Config) { c.CorrelationWeight, c.OverlapWeight, c.ScaleWeight = 0, 0, 0 },
		"min above max width":      func(c *Config) { c.MinWidth, c.MaxWidth = 50, 40 },
		"min above max height":     func(c *Config) { c.MinHeight, c.MaxHeight = 50, 40 },
		"zero confidence frames":   func(c *Config) { c.NumFramesConfidence = 0 },
		"negative inactive frames": func(c *Config) { c.NumInactiveFrames = -1 },
		"padding below one":        func(c *Config) { c.PaddingRatio = 0.5 },
		"narrow relative region":   func(c *Config) { c.RelativeSearchRegion = 1.2 },
		"iou with appearance":      func(c *Config) { c.Algorithm = correlation.VariantIOU },
		"unknown matching":         func(c *Config) { c.Matching = MatchingAlgorithm(9) },
		"unknown color space":      func(c *Config) { c.ColorSpace = appearance.ColorSpace(9) },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		err := cfg.Validate()
		assert.Truef(t, errors.Is(err, ErrInvalidConfig), "%s: expected ErrInvalidConfig, got %v", name, err)
	}

	cfg := DefaultConfig()
	cfg.MinWidth, cfg.MaxWidth = 50, 0
	assert.NoError(t, cfg.Validate(), "zero max width means unbounded")
}

func TestNewTrackerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumFramesConfidence = 0
	_, err := NewTracker(cfg)
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.json")
	body := `{
		"algorithm": "mosse",
		"color_space": "hsv",
		"motion_model": "kalman",
		"matching": "greedy",
		"num_inactive_frames": 7,
		"suppress_inactive": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, correlation.VariantMOSSE, cfg.Algorithm)
	assert.Equal(t, appearance.ColorSpaceHSV, cfg.ColorSpace)
	assert.Equal(t, motion.ModelKalman, cfg.MotionModel)
	assert.Equal(t, MatchingAlgorithmGreedy, cfg.Matching)
	assert.Equal(t, 7, cfg.NumInactiveFrames)
	assert.True(t, cfg.SuppressInactive)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultConfig().NumFramesConfidence, cfg.NumFramesConfidence)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "tracker.yaml"))
	assert.Error(t, err, "non-json extension")

	_, err = LoadConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err, "missing file")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"algorithm": "csrt"}`), 0o600))
	_, err = LoadConfig(bad)
	assert.Error(t, err, "unknown algorithm")

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"padding_ratio": 0.2}`), 0o600))
	_, err = LoadConfig(invalid)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
}
