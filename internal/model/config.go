package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete pricelens configuration
type Config struct {
	Capture CaptureConfig `yaml:"capture" mapstructure:"capture"`
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Match   MatchConfig   `yaml:"match" mapstructure:"match"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Debug   DebugConfig   `yaml:"debug" mapstructure:"debug"`
}

// CaptureConfig describes the tooltip window around the pointer
type CaptureConfig struct {
	Width        int           `yaml:"width" mapstructure:"width"`
	Height       int           `yaml:"height" mapstructure:"height"`
	OffsetX      int           `yaml:"offset_x" mapstructure:"offset_x"` // tooltip text starts right of the pointer
	OffsetY      int           `yaml:"offset_y" mapstructure:"offset_y"` // and slightly above it
	SettleDelay  time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	MinOCRHeight int           `yaml:"min_ocr_height" mapstructure:"min_ocr_height"`
}

// OCRConfig configures the recognition engine
type OCRConfig struct {
	Language       string        `yaml:"language" mapstructure:"language"`
	TessdataPrefix string        `yaml:"tessdata_prefix,omitempty" mapstructure:"tessdata_prefix"`
	InitWait       time.Duration `yaml:"init_wait" mapstructure:"init_wait"`
	Passes         []string      `yaml:"passes" mapstructure:"passes"`
}

// MatchConfig configures fuzzy matching
type MatchConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// CacheConfig configures both cache tiers
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`
	ResolutionTTL time.Duration `yaml:"resolution_ttl" mapstructure:"resolution_ttl"`
	CorpusDir     string        `yaml:"corpus_dir" mapstructure:"corpus_dir"`
	CorpusMaxAge  time.Duration `yaml:"corpus_max_age" mapstructure:"corpus_max_age"`
}

// CatalogConfig configures the remote price catalog
type CatalogConfig struct {
	Endpoint          string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	GameMode          string        `yaml:"game_mode" mapstructure:"game_mode"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// DebugConfig controls diagnostics
type DebugConfig struct {
	SaveRegion bool   `yaml:"save_region" mapstructure:"save_region"`
	Dir        string `yaml:"dir" mapstructure:"dir"`
	FrameReuse bool   `yaml:"frame_reuse" mapstructure:"frame_reuse"` // skip OCR for a pixel-identical capture
}

// DefaultConfig returns the defaults tuned for the in-game tooltip layout
func DefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			Width:        500,
			Height:       80,
			OffsetX:      80,
			OffsetY:      -60,
			SettleDelay:  300 * time.Millisecond,
			MinOCRHeight: 160,
		},
		OCR: OCRConfig{
			Language: "eng",
			InitWait: 15 * time.Second,
			Passes:   []string{"binary", "inverted", "raw"},
		},
		Match: MatchConfig{
			Threshold: 0.6,
		},
		Cache: CacheConfig{
			Enabled:       true,
			ResolutionTTL: 30 * time.Minute,
			CorpusDir:     filepath.Join(DefaultHome(), "cache"),
			CorpusMaxAge:  24 * time.Hour,
		},
		Catalog: CatalogConfig{
			Endpoint:          "https://api.tarkov.dev/graphql",
			Timeout:           10 * time.Second,
			UserAgent:         "pricelens/0.1 (+https://github.com/ppiankov/pricelens)",
			GameMode:          string(ModeRegular),
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Debug: DebugConfig{
			Dir: filepath.Join(DefaultHome(), "debug"),
		},
	}
}

// DefaultHome returns ~/.pricelens, or a relative directory when HOME is unknown
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pricelens"
	}
	return filepath.Join(home, ".pricelens")
}
