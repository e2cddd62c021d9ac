package mot

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/LdDl/vmot/appearance"
	"github.com/LdDl/vmot/correlation"
	"github.com/LdDl/vmot/motion"
	"github.com/pkg/errors"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid tracker configuration")

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// MatchingAlgorithm is for algorithm type for matching detections to tracks
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal min-cost assignment
	MatchingAlgorithmHungarian MatchingAlgorithm = iota
	// MatchingAlgorithmGreedy takes the cheapest remaining pair first
	MatchingAlgorithmGreedy
	// MatchingAlgorithmHungarianScore maximises the similarity 1/(1+cost) instead of minimising cost
	MatchingAlgorithmHungarianScore
)

func (m MatchingAlgorithm) String() string {
	switch m {
	case MatchingAlgorithmHungarian:
		return "hungarian"
	case MatchingAlgorithmGreedy:
		return "greedy"
	case MatchingAlgorithmHungarianScore:
		return "hungarian_score"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m MatchingAlgorithm) MarshalText() ([]byte, error) {
	switch m {
	case MatchingAlgorithmHungarian, MatchingAlgorithmGreedy, MatchingAlgorithmHungarianScore:
		return []byte(m.String()), nil
	default:
		return nil, errors.Errorf("unknown matching algorithm %d", m)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MatchingAlgorithm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hungarian":
		*m = MatchingAlgorithmHungarian
	case "greedy":
		*m = MatchingAlgorithmGreedy
	case "hungarian_score":
		*m = MatchingAlgorithmHungarianScore
	default:
		return errors.Errorf("unknown matching algorithm %q", string(text))
	}
	return nil
}

// Config is fixed when a stream starts. Zero maxima mean "unbounded".
type Config struct {
	Algorithm   correlation.Variant   `json:"algorithm"`
	ColorSpace  appearance.ColorSpace `json:"color_space"`
	MotionModel motion.Model          `json:"motion_model"`
	Matching    MatchingAlgorithm     `json:"matching"`

	MinWidth  float64 `json:"min_width"`
	MaxWidth  float64 `json:"max_width"`
	MinHeight float64 `json:"min_height"`
	MaxHeight float64 `json:"max_height"`

	// NumInactiveFrames is how many unmatched frames an INACTIVE slot survives.
	NumInactiveFrames int `json:"num_inactive_frames"`
	// NumFramesConfidence is the number of consecutive matches needed to confirm a track.
	NumFramesConfidence int `json:"num_frames_confidence"`
	// MaxShadowFrames limits how long a track may be followed visually without a
	// detection match. Zero means NumInactiveFrames.
	MaxShadowFrames int `json:"max_shadow_frames"`

	PaddingRatio         float64 `json:"padding_ratio"`
	MatchSearchRegion    float64 `json:"match_search_region"`
	RelativeSearchRegion float64 `json:"relative_search_region"`

	CorrelationThreshold float64 `json:"correlation_threshold"`
	OverlapThreshold     float64 `json:"overlap_threshold"`
	ScaleChangeThreshold float64 `json:"scale_change_threshold"`
	CorrelationWeight    float64 `json:"correlation_weight"`
	OverlapWeight        float64 `json:"overlap_weight"`
	ScaleWeight          float64 `json:"scale_weight"`
	OcclusionThreshold   float64 `json:"occlusion_threshold"`
	ConfidenceThreshold  float64 `json:"confidence_threshold"`

	SuppressInactive bool `json:"suppress_inactive"`
	// StableRefreshFrames is the number of detection matches between refreshes of the stable histogram.
	StableRefreshFrames int `json:"stable_refresh_frames"`

	MultiScale bool `json:"multi_scale"`
	// LearningRate overrides the filter default when positive.
	LearningRate float64 `json:"learning_rate"`
	// MaxWorkspaceBytes caps each filter workspace; zero means unlimited.
	MaxWorkspaceBytes int64 `json:"max_workspace_bytes"`
}

// DefaultConfig returns a KCF tracker configuration suitable for most streams.
func DefaultConfig() Config {
	return Config{
		Algorithm:            correlation.VariantKCF,
		ColorSpace:           appearance.ColorSpaceRGB,
		MotionModel:          motion.ModelSmoothed,
		Matching:             MatchingAlgorithmHungarian,
		MinWidth:             4,
		MinHeight:            4,
		NumInactiveFrames:    10,
		NumFramesConfidence:  3,
		PaddingRatio:         2.5,
		MatchSearchRegion:    1.5,
		RelativeSearchRegion: 3.0,
		CorrelationThreshold: 0.5,
		OverlapThreshold:     0.1,
		ScaleChangeThreshold: 0.5,
		CorrelationWeight:    0.4,
		OverlapWeight:        0.4,
		ScaleWeight:          0.2,
		OcclusionThreshold:   0.6,
		ConfidenceThreshold:  0.3,
		StableRefreshFrames:  30,
	}
}

// DefaultIOUConfig returns DefaultConfig switched to the IOU algorithm, which carries no appearance term.
func DefaultIOUConfig() Config {
	cfg := DefaultConfig()
	cfg.Algorithm = correlation.VariantIOU
	cfg.CorrelationWeight = 0
	cfg.OverlapWeight = 0.7
	cfg.ScaleWeight = 0.3
	return cfg
}

// Validate rejects contradictory or out-of-range settings.
func (cfg Config) Validate() error {
	if _, err := cfg.Algorithm.MarshalText(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := cfg.ColorSpace.MarshalText(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := cfg.MotionModel.MarshalText(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := cfg.Matching.MarshalText(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	unit := []struct {
		name  string
		value float64
	}{
		{"correlation_threshold", cfg.CorrelationThreshold},
		{"overlap_threshold", cfg.OverlapThreshold},
		{"scale_change_threshold", cfg.ScaleChangeThreshold},
		{"occlusion_threshold", cfg.OcclusionThreshold},
		{"confidence_threshold", cfg.ConfidenceThreshold},
	}
	for _, u := range unit {
		if u.value < 0 || u.value > 1 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be in [0, 1], got %f", u.name, u.value)
		}
	}
	if cfg.CorrelationWeight < 0 || cfg.OverlapWeight < 0 || cfg.ScaleWeight < 0 {
		return errors.Wrap(ErrInvalidConfig, "weights must not be negative")
	}
	if cfg.CorrelationWeight+cfg.OverlapWeight+cfg.ScaleWeight == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one weight must be positive")
	}
	if cfg.Algorithm == correlation.VariantIOU && cfg.CorrelationWeight > 0 {
		return errors.Wrap(ErrInvalidConfig, "iou algorithm has no appearance term: correlation_weight must be 0")
	}
	if cfg.MinWidth < 0 || cfg.MinHeight < 0 || cfg.MaxWidth < 0 || cfg.MaxHeight < 0 {
		return errors.Wrap(ErrInvalidConfig, "size bounds must not be negative")
	}
	if cfg.MaxWidth > 0 && cfg.MinWidth > cfg.MaxWidth {
		return errors.Wrapf(ErrInvalidConfig, "min_width %f exceeds max_width %f", cfg.MinWidth, cfg.MaxWidth)
	}
	if cfg.MaxHeight > 0 && cfg.MinHeight > cfg.MaxHeight {
		return errors.Wrapf(ErrInvalidConfig, "min_height %f exceeds max_height %f", cfg.MinHeight, cfg.MaxHeight)
	}
	if cfg.NumFramesConfidence < 1 {
		return errors.Wrapf(ErrInvalidConfig, "num_frames_confidence must be >= 1, got %d", cfg.NumFramesConfidence)
	}
	if cfg.NumInactiveFrames < 0 || cfg.MaxShadowFrames < 0 {
		return errors.Wrap(ErrInvalidConfig, "frame counts must not be negative")
	}
	if cfg.StableRefreshFrames < 1 {
		return errors.Wrapf(ErrInvalidConfig, "stable_refresh_frames must be >= 1, got %d", cfg.StableRefreshFrames)
	}
	if cfg.PaddingRatio < 1 {
		return errors.Wrapf(ErrInvalidConfig, "padding_ratio must be >= 1, got %f", cfg.PaddingRatio)
	}
	if cfg.MatchSearchRegion < 1 {
		return errors.Wrapf(ErrInvalidConfig, "match_search_region must be >= 1, got %f", cfg.MatchSearchRegion)
	}
	if cfg.RelativeSearchRegion < cfg.MatchSearchRegion {
		return errors.Wrapf(ErrInvalidConfig, "relative_search_region %f is narrower than match_search_region %f", cfg.RelativeSearchRegion, cfg.MatchSearchRegion)
	}
	if cfg.LearningRate < 0 || cfg.LearningRate > 1 {
		return errors.Wrapf(ErrInvalidConfig, "learning_rate must be in [0, 1], got %f", cfg.LearningRate)
	}
	if cfg.MaxWorkspaceBytes < 0 {
		return errors.Wrap(ErrInvalidConfig, "max_workspace_bytes must not be negative")
	}
	return nil
}

// filterParams derives the visual filter parameters.
func (cfg Config) filterParams() correlation.Params {
	p := correlation.DefaultParams(cfg.Algorithm)
	p.Padding = cfg.PaddingRatio
	p.MultiScale = cfg.MultiScale
	p.MaxWorkspaceBytes = cfg.MaxWorkspaceBytes
	if cfg.LearningRate > 0 {
		p.LearningRate = cfg.LearningRate
	}
	return p
}

// shadowLimit is the number of tracking-only frames a track may go without a detection match.
func (cfg Config) shadowLimit() int {
	if cfg.MaxShadowFrames == 0 {
		return cfg.NumInactiveFrames
	}
	return cfg.MaxShadowFrames
}

// LoadConfig reads a JSON file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to stat config file")
	}
	if fileInfo.Size() > maxConfigFileSize {
		return Config{}, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
