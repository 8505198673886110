package zspatial

import (
	"log/slog"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/resource"
	"github.com/hupe1980/zspatial/store"
)

type options struct {
	newStore         func() store.Store
	maxZ             int
	codec            codec.Codec
	registry         *codec.Registry
	compression      string
	resources        *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Index and its snapshots.
type Option func(*options)

// WithTreeStore keeps records in a B-tree of the given degree. This is the
// default. A degree below two selects store.DefaultOptions.Degree.
func WithTreeStore(degree int) Option {
	return func(o *options) {
		o.newStore = func() store.Store {
			return store.NewTreeStore(func(so *store.Options) {
				if degree >= 2 {
					so.Degree = degree
				}
			})
		}
	}
}

// WithArrayStore keeps records in a sorted slice. Lookups are as fast as in
// the tree, inserts are linear, and the memory overhead is lowest. Suits
// indexes that are loaded once and then only joined.
func WithArrayStore() Option {
	return func(o *options) {
		o.newStore = func() store.Store { return store.NewArrayStore() }
	}
}

// WithMaxZ sets the decomposition budget for objects that do not choose
// their own.
func WithMaxZ(n int) Option {
	return func(o *options) {
		o.maxZ = n
	}
}

// WithCodec configures the codec used for snapshot headers.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithRegistry configures the object types snapshots can store. The default
// registry knows the geom and orbgeom types.
func WithRegistry(r *codec.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithCompression selects the snapshot body compression: "none", "lz4" or
// "zstd" (default).
func WithCompression(name string) Option {
	return func(o *options) {
		o.compression = name
	}
}

// WithResourceController bounds concurrent joins, snapshot IO bandwidth and
// the memory of loads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &zspatial.BasicMetricsCollector{}
//	idx, _ := zspatial.New(s, zspatial.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Joins: %d, Avg latency: %dns\n", stats.JoinCount, stats.JoinAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := zspatial.NewJSONLogger(slog.LevelInfo)
//	idx, _ := zspatial.New(s, zspatial.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      "zstd",
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	WithTreeStore(0)(&o)
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
