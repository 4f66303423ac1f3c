// Package cache provides pluggable storage for GraphQL responses.
//
// A [Cache] stores opaque byte slices under string keys with an optional
// TTL. Keys are produced by a [Keyer] so that every backend sees the same
// key layout:
//
//	gql:<sha256(endpoint, query, variables)>
//
// # Backends
//
//   - [FileCache]: JSON files under the XDG cache directory (CLI default)
//   - [NullCache]: never stores anything (--no-cache)
//   - [RedisCache]: shared cache for several taggraph servers
//   - [MongoCache]: documents with a TTL index
//
// Use [Open] to construct a backend from [Options].
//
// Only transport responses are cached. Graphs are rebuilt from tags on
// every draw.
package cache

import (
	"context"
	"fmt"
	"time"
)

// TTLQuery is the default lifetime of a cached GraphQL response.
const TTLQuery = 5 * time.Minute

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// QueryKey returns the key for a GraphQL request against endpoint.
	QueryKey(endpoint, query string, variables any) string
}

// DefaultKeyer hashes request components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// QueryKey hashes endpoint, query and variables.
func (DefaultKeyer) QueryKey(endpoint, query string, variables any) string {
	return hashKey("gql", endpoint, query, variables)
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// File backend
	Dir string

	// Redis backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Mongo backend
	MongoURI      string
	MongoDatabase string
}

// Open constructs the backend named by opts.Backend.
// An empty backend name selects the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		fc, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		rc, err := NewRedisCache(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := NewMongoCache(ctx, MongoConfig{
			URI:      opts.MongoURI,
			Database: opts.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q (must be one of: file, none, redis, mongo)", opts.Backend)
	}
}
