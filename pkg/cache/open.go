package cache

import (
	"context"

	"github.com/matzehuels/gridui/pkg/errors"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend Backend
	Dir     string // FileCache root
	Redis   RedisOptions
}

// Open builds the configured backend. An empty backend selects the file
// cache when Dir is set and the null cache otherwise.
func Open(ctx context.Context, opts Options) (Cache, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendNone
		if opts.Dir != "" {
			backend = BackendFile
		}
	}

	switch backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "file cache needs a directory")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open file cache %s", opts.Dir)
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open redis cache")
		}
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be none, file or redis)", backend)
}
