package audio

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds player and output settings
type Config struct {
	// Backend selects the output: auto, speaker, pipe, none
	Backend string `yaml:"backend" mapstructure:"backend"`

	// SampleRate is the output rate; decoded buffers are converted to it
	SampleRate int `yaml:"sample_rate" mapstructure:"sample_rate"`

	// BufferDuration sizes the device buffer and the writer tick
	BufferDuration time.Duration `yaml:"buffer_duration" mapstructure:"buffer_duration"`

	// Volume is the initial linear gain (0.0-1.0); nil is full volume
	Volume *float64 `yaml:"volume" mapstructure:"volume"`

	// BaseURL resolves relative locators; empty means local paths
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// ContentType is sent with every fetch; advisory only
	ContentType string `yaml:"content_type" mapstructure:"content_type"`

	// MaxBytes caps a fetched body, 0 = unlimited
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes"`

	// ResampleQuality is passed to beep.Resample (1-64)
	ResampleQuality int `yaml:"resample_quality" mapstructure:"resample_quality"`

	// HTTPClient overrides http.DefaultClient
	HTTPClient *http.Client `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the defaults
func DefaultConfig() *Config {
	return &Config{
		Backend:         OutputAuto,
		SampleRate:      44100,
		BufferDuration:  100 * time.Millisecond,
		Volume:          Level(1.0),
		ContentType:     "audio/wav",
		MaxBytes:        16 << 20,
		ResampleQuality: 4,
	}
}

// LoadConfig loads configuration from SFX_* environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()
	ApplyEnv(cfg)
	return cfg
}

// ApplyEnv overlays set SFX_* environment variables onto cfg
// Malformed values are ignored
func ApplyEnv(cfg *Config) {
	if backend := os.Getenv("SFX_BACKEND"); backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(backend))
	}

	// Volume 0-100 converted to 0.0-1.0
	if volume := os.Getenv("SFX_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.Volume = Level(clampVolume(float64(val) / 100.0))
		}
	}

	if sampleRate := os.Getenv("SFX_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if bufferMs := os.Getenv("SFX_BUFFER_MS"); bufferMs != "" {
		if val, err := strconv.Atoi(bufferMs); err == nil && val > 0 {
			cfg.BufferDuration = time.Duration(val) * time.Millisecond
		}
	}

	if baseURL := os.Getenv("SFX_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if maxBytes := os.Getenv("SFX_MAX_BYTES"); maxBytes != "" {
		if val, err := strconv.ParseInt(maxBytes, 10, 64); err == nil && val >= 0 {
			cfg.MaxBytes = val
		}
	}
}

// normalized returns a copy with zero or out-of-range fields replaced by defaults
func (c *Config) normalized() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}

	out := *c
	if out.Backend == "" {
		out.Backend = def.Backend
	}
	if out.SampleRate <= 0 {
		out.SampleRate = def.SampleRate
	}
	if out.BufferDuration <= 0 {
		out.BufferDuration = def.BufferDuration
	}
	if out.ContentType == "" {
		out.ContentType = def.ContentType
	}
	if out.MaxBytes < 0 {
		out.MaxBytes = 0
	}
	if out.ResampleQuality < 1 || out.ResampleQuality > 64 {
		out.ResampleQuality = def.ResampleQuality
	}
	out.Volume = Level(out.InitialVolume())
	return &out
}

// InitialVolume returns the clamped initial gain, 1.0 when Volume is unset
func (c *Config) InitialVolume() float64 {
	if c == nil || c.Volume == nil {
		return 1.0
	}
	return clampVolume(*c.Volume)
}

// Level returns a pointer to v for Config.Volume
func Level(v float64) *float64 {
	return &v
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
