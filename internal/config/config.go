package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ivlev/cuts/internal/storyboard"
)

var ErrInvalid = errors.New("invalid config")

const PathEnv = "CUTS_CONFIG"

type Config struct {
	LogLevel string   `yaml:"log_level" env:"CUTS_LOG_LEVEL" env-default:"info"`
	Defaults Defaults `yaml:"defaults"`
	Preview  Preview  `yaml:"preview"`
	Render   Render   `yaml:"render"`
}

// Defaults fill the header of a new project.
type Defaults struct {
	Format   string `yaml:"format" env:"CUTS_FORMAT" env-default:"1920x1080 / 16:9"`
	FPS      string `yaml:"fps" env:"CUTS_FPS" env-default:"30"`
	Delivery string `yaml:"delivery" env:"CUTS_DELIVERY" env-default:"H.264 / mp4 / AAC"`
	Loudness string `yaml:"loudness" env:"CUTS_LOUDNESS" env-default:"-14 LUFS / -1 dBTP"`
	Platform string `yaml:"platform" env:"CUTS_PLATFORM" env-default:"Signage"`
	Version  string `yaml:"version" env:"CUTS_VERSION" env-default:"1.00"`
	Rows     int    `yaml:"rows" env:"CUTS_ROWS" env-default:"3"`
}

type Preview struct {
	MaxWidth     int           `yaml:"max_width" env:"CUTS_PREVIEW_MAX_WIDTH" env-default:"320"`
	Quality      int           `yaml:"quality" env:"CUTS_PREVIEW_QUALITY" env-default:"85"`
	FFmpeg       string        `yaml:"ffmpeg" env:"CUTS_FFMPEG" env-default:"ffmpeg"`
	FFprobe      string        `yaml:"ffprobe" env:"CUTS_FFPROBE" env-default:"ffprobe"`
	FrameTimeout time.Duration `yaml:"frame_timeout" env:"CUTS_FRAME_TIMEOUT" env-default:"20s"`
}

type Render struct {
	Width           int     `yaml:"width" env:"CUTS_WIDTH" env-default:"1920"`
	Height          int     `yaml:"height" env:"CUTS_HEIGHT" env-default:"1080"`
	FPS             int     `yaml:"fps" env:"CUTS_RENDER_FPS" env-default:"30"`
	Workers         int     `yaml:"workers" env:"CUTS_WORKERS" env-default:"0"`
	TransitionType  string  `yaml:"transition" env:"CUTS_TRANSITION" env-default:"none"`
	FadeDuration    float64 `yaml:"fade" env:"CUTS_FADE" env-default:"0.5"`
	ZoomMode        string  `yaml:"zoom_mode" env:"CUTS_ZOOM_MODE" env-default:"static"`
	ZoomSpeed       float64 `yaml:"zoom_speed" env:"CUTS_ZOOM_SPEED" env-default:"0.0015"`
	Encoder         string  `yaml:"encoder" env:"CUTS_ENCODER"`
	Quality         int     `yaml:"quality" env:"CUTS_QUALITY" env-default:"23"`
	Preset          string  `yaml:"preset" env:"CUTS_PRESET" env-default:"fast"`
	FontPath        string  `yaml:"font_path" env:"CUTS_FONT"`
	FontSize        float64 `yaml:"font_size" env:"CUTS_FONT_SIZE" env-default:"0"`
	DPI             int     `yaml:"dpi" env:"CUTS_DPI" env-default:"150"`
	DefaultSeconds  float64 `yaml:"default_seconds" env:"CUTS_DEFAULT_SECONDS" env-default:"3"`
	CaptionMaxRunes int     `yaml:"caption_max_runes" env:"CUTS_CAPTION_MAX_RUNES" env-default:"80"`
	Slate           bool    `yaml:"slate" env:"CUTS_SLATE" env-default:"false"`
	SlateSeconds    float64 `yaml:"slate_seconds" env:"CUTS_SLATE_SECONDS" env-default:"2"`
	ShowStats       bool    `yaml:"show_stats" env:"CUTS_SHOW_STATS" env-default:"false"`
}

// SegmentParams describe one encoded segment of a render.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	ZoomMode      string
	ZoomSpeed     float64
	FadeDuration  float64
	CutIndex      int
	Filter        string
	Encoder       string
	Quality       int
	Preset        string
}

// Load reads .env when present, then the YAML file at path (or the file
// named by CUTS_CONFIG), then the environment. Without a file only env
// values and defaults apply.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(PathEnv)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic("cannot read config: " + err.Error())
	}
	return cfg
}

func (c *Config) Validate() error {
	r := c.Render
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, r.Width, r.Height)
	case r.FPS <= 0:
		return fmt.Errorf("%w: render fps %d", ErrInvalid, r.FPS)
	case r.FadeDuration < 0:
		return fmt.Errorf("%w: negative fade %.2f", ErrInvalid, r.FadeDuration)
	case r.DefaultSeconds <= 0:
		return fmt.Errorf("%w: default cut seconds %.2f", ErrInvalid, r.DefaultSeconds)
	case r.CaptionMaxRunes <= 0:
		return fmt.Errorf("%w: caption max runes %d", ErrInvalid, r.CaptionMaxRunes)
	case r.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, r.Workers)
	case c.Defaults.Rows < 0:
		return fmt.Errorf("%w: default rows %d", ErrInvalid, c.Defaults.Rows)
	case c.Preview.MaxWidth <= 0:
		return fmt.Errorf("%w: preview width %d", ErrInvalid, c.Preview.MaxWidth)
	}
	return nil
}

// StoryboardDefaults converts the header defaults for a new project.
func (d Defaults) StoryboardDefaults() storyboard.Defaults {
	return storyboard.Defaults{
		Format:   d.Format,
		FPS:      d.FPS,
		Delivery: d.Delivery,
		Loudness: d.Loudness,
		Platform: d.Platform,
		Version:  d.Version,
		Rows:     d.Rows,
	}
}
