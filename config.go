package slotdb

import (
	"time"

	"github.com/zerodha/logf"
)

const (
	defaultSyncInterval = time.Minute * 1
)

// Options represents configuration options for opening a store.
type Options struct {
	debug        bool           // Enable debug logging.
	logger       *logf.Logger   // Logger to use instead of the default one.
	readOnly     bool           // Open without a lockfile and reject mutations.
	alwaysFSync  bool           // Flush filesystem buffer after every write.
	syncInterval *time.Duration // Interval to sync the store file in background.
}

// Config is a function on the Options for a store.
// These are used to configure particular options.
type Config func(*Options) error

func DefaultOptions() *Options {
	return &Options{
		debug:       false,
		readOnly:    false,
		alwaysFSync: false,
	}
}

func WithDebug() Config {
	return func(o *Options) error {
		o.debug = true
		return nil
	}
}

func WithLogger(lo logf.Logger) Config {
	return func(o *Options) error {
		o.logger = &lo
		return nil
	}
}

func WithReadOnly() Config {
	return func(o *Options) error {
		o.readOnly = true
		return nil
	}
}

func WithAlwaysSync() Config {
	return func(o *Options) error {
		o.alwaysFSync = true
		o.syncInterval = nil
		return nil
	}
}

func WithAutoSync() Config {
	return func(o *Options) error {
		o.alwaysFSync = false
		d := defaultSyncInterval
		o.syncInterval = &d
		return nil
	}
}

func WithBackgroundSync(interval time.Duration) Config {
	return func(o *Options) error {
		o.alwaysFSync = false
		o.syncInterval = &interval
		return nil
	}
}

// initLogger initializes logger instance.
func initLogger(debug bool) logf.Logger {
	opts := logf.Opts{EnableCaller: true}
	if debug {
		opts.Level = logf.DebugLevel
	}
	return logf.New(opts)
}
