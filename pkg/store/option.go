package store

import "time"

type options struct {
	prefix    string
	cacheSize int
	cacheTTL  time.Duration
}

// apply apply options
func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// setDefault default configuration
func (o *options) setDefault() {
	if o.prefix == "" {
		o.prefix = "game"
	}
	if o.cacheSize <= 0 {
		o.cacheSize = 128
	}
	if o.cacheTTL <= 0 {
		o.cacheTTL = time.Minute * 5 // 默认5分钟
	}
}

type Option func(*options)

// WithPrefix sets the redis key prefix
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithCacheSize sets the in-process cache capacity
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithCacheTTL sets the in-process cache entry lifetime
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = d
	}
}
