package latentset

import (
	"log/slog"

	"github.com/hupe1980/latentset/internal/fs"
	"github.com/hupe1980/latentset/latentcache"
)

type options struct {
	device           Device
	encode           EncodeFunc
	cache            latentcache.Cache
	key              latentcache.KeyFunc
	fs               fs.FileSystem
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Dataset.
type Option func(*options)

// WithDevice sets the compute device tensors are moved to before the
// transform and returned from after encoding. The default is CPU.
func WithDevice(d Device) Option {
	return func(o *options) {
		if d == nil {
			d = CPU{}
		}
		o.device = d
	}
}

// WithEncoder sets the function mapping a [B, C, F, H, W] batch to latents.
// Without an encoder only cached samples can be retrieved.
func WithEncoder(fn EncodeFunc) Option {
	return func(o *options) {
		o.encode = fn
	}
}

// WithCache replaces the latent cache. The default stores codec blobs at
// latentcache.LatentPath next to every video.
//
// Example keeping hot latents in memory:
//
//	c := latentcache.NewMemoryCache(latentcache.NewLocalCache(), 4<<30)
//	ds, _ := latentset.New(root, "prompts.txt", "videos.txt", p, latentset.WithCache(c))
func WithCache(c latentcache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithKeyFunc replaces the function deriving cache keys from video paths.
// Pass nil to use latentcache.LatentPath.
func WithKeyFunc(fn latentcache.KeyFunc) Option {
	return func(o *options) {
		if fn == nil {
			fn = latentcache.LatentPath
		}
		o.key = fn
	}
}

// withFileSystem sets the file system used to read the list files and
// validate video paths.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := latentset.NewJSONLogger(slog.LevelInfo)
//	ds, _ := latentset.New(root, "prompts.txt", "videos.txt", p, latentset.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		device:           CPU{},
		key:              latentcache.LatentPath,
		fs:               fs.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.cache == nil {
		o.cache = latentcache.NewLocalCache()
	}
	return o
}
