// Package config loads the latentwarm command configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/hupe1980/latentset/codec"
	"github.com/hupe1980/latentset/preprocess"
)

// Backend names accepted in LATENT_BACKEND.
const (
	BackendLocal = "local"
	BackendMinIO = "minio"
	BackendS3    = "s3"
)

// Mode names accepted in LATENT_MODE.
const (
	ModeResize = "resize"
	ModeBucket = "bucket"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DataRoot     string `env:"DATA_ROOT,required,notEmpty"`
	CaptionsFile string `env:"CAPTION_COLUMN" envDefault:"prompts.txt"`
	VideosFile   string `env:"VIDEO_COLUMN"   envDefault:"videos.txt"`

	Mode      string   `env:"LATENT_MODE"       envDefault:"resize"`
	MaxFrames int      `env:"MAX_NUM_FRAMES"    envDefault:"49"`
	Height    int      `env:"HEIGHT"            envDefault:"480"`
	Width     int      `env:"WIDTH"             envDefault:"720"`
	Buckets   []string `env:"RESOLUTION_BUCKETS" envSeparator:";" envDefault:"49x480x720"`
	Ratios    []int    `env:"COMPRESSION_RATIOS" envSeparator:"," envDefault:"4,8,8"`

	EncoderCmd  []string `env:"LATENT_ENCODER_CMD" envSeparator:" "`
	Codec       string   `env:"LATENT_CODEC"       envDefault:"float32+lz4"`
	MemoryCache int64    `env:"LATENT_MEMORY_CACHE_BYTES" envDefault:"0"`

	Backend         string `env:"LATENT_BACKEND"    envDefault:"local"`
	Bucket          string `env:"LATENT_BUCKET"`
	Prefix          string `env:"LATENT_PREFIX"`
	MinIOEndpoint   string `env:"MINIO_ENDPOINT"    envDefault:"localhost:9000"`
	MinIOAccessKey  string `env:"MINIO_ACCESS_KEY"  envDefault:"minioadmin"`
	MinIOSecretKey  string `env:"MINIO_SECRET_KEY"  envDefault:"minioadmin"`
	MinIOUseSSL     bool   `env:"MINIO_USE_SSL"     envDefault:"false"`
	S3Region        string `env:"AWS_REGION"`
	S3PartThreshold int64  `env:"S3_MULTIPART_THRESHOLD" envDefault:"16777216"`

	Workers    int     `env:"WARM_WORKERS"      envDefault:"1"`
	EncodeRate float64 `env:"WARM_ENCODE_RATE"  envDefault:"0"`
	FailFast   bool    `env:"WARM_FAIL_FAST"    envDefault:"false"`
	ReportPath string  `env:"WARM_REPORT"`

	FFmpegPath  string `env:"FFMPEG_PATH"  envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	MetricsPort int    `env:"METRICS_PORT" envDefault:"0"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeResize:
		if c.MaxFrames <= 0 || c.Height <= 0 || c.Width <= 0 {
			return fmt.Errorf("%w: MAX_NUM_FRAMES, HEIGHT and WIDTH must be positive", ErrInvalid)
		}
	case ModeBucket:
		if _, err := c.ResolutionBuckets(); err != nil {
			return err
		}
		if _, err := c.CompressionRatios(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown LATENT_MODE %q", ErrInvalid, c.Mode)
	}

	switch c.Backend {
	case BackendLocal:
	case BackendMinIO, BackendS3:
		if c.Bucket == "" {
			return fmt.Errorf("%w: LATENT_BUCKET is required for backend %s", ErrInvalid, c.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown LATENT_BACKEND %q", ErrInvalid, c.Backend)
	}

	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("%w: unknown LATENT_CODEC %q", ErrInvalid, c.Codec)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: WARM_WORKERS must be positive", ErrInvalid)
	}
	return nil
}

// ResolutionBuckets parses RESOLUTION_BUCKETS entries of the form FxHxW.
func (c *Config) ResolutionBuckets() ([]preprocess.Bucket, error) {
	out := make([]preprocess.Bucket, 0, len(c.Buckets))
	for _, s := range c.Buckets {
		parts := strings.Split(strings.TrimSpace(s), "x")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: bucket %q is not FxHxW", ErrInvalid, s)
		}
		var dims [3]int
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: bucket %q has invalid dimension %q", ErrInvalid, s, p)
			}
			dims[i] = n
		}
		out = append(out, preprocess.Bucket{Frames: dims[0], Height: dims[1], Width: dims[2]})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: RESOLUTION_BUCKETS is empty", ErrInvalid)
	}
	return out, nil
}

// CompressionRatios parses COMPRESSION_RATIOS as temporal,height,width.
func (c *Config) CompressionRatios() (preprocess.Ratios, error) {
	if len(c.Ratios) != 3 {
		return preprocess.Ratios{}, fmt.Errorf("%w: COMPRESSION_RATIOS needs 3 values, got %d", ErrInvalid, len(c.Ratios))
	}
	return preprocess.Ratios{Temporal: c.Ratios[0], Height: c.Ratios[1], Width: c.Ratios[2]}, nil
}
