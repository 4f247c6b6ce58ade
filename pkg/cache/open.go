package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Backend kinds understood by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backend is a parsed cache location.
type Backend struct {
	Kind     string
	Location string // directory for file, connection URL for redis and mongo
	Database string // mongo only
}

// ParseBackend interprets a cache spec:
//
//	""  or "none"                      no caching
//	/path/to/dir  or file:///path      FileCache
//	redis://host:6379/0, rediss://...  RedisCache
//	mongodb://host/db, mongodb+srv://  MongoCache; the path names the database
func ParseBackend(spec string) (Backend, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == BackendNone {
		return Backend{Kind: BackendNone}, nil
	}

	scheme, rest, ok := strings.Cut(spec, "://")
	if !ok {
		return Backend{Kind: BackendFile, Location: spec}, nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		if rest == "" {
			return Backend{}, fmt.Errorf("%w: file spec %q has no path", ErrUnknownBackend, spec)
		}
		return Backend{Kind: BackendFile, Location: rest}, nil
	case "redis", "rediss", "unix":
		return Backend{Kind: BackendRedis, Location: spec}, nil
	case "mongodb", "mongodb+srv":
		u, err := url.Parse(spec)
		if err != nil {
			return Backend{}, fmt.Errorf("parse mongo url: %w", err)
		}
		db := strings.Trim(u.Path, "/")
		if db == "" {
			db = DefaultMongoDatabase
		}
		return Backend{Kind: BackendMongo, Location: spec, Database: db}, nil
	default:
		return Backend{}, fmt.Errorf("%w: %q", ErrUnknownBackend, scheme)
	}
}

// Open parses spec and connects to the backend it names.
func Open(ctx context.Context, spec string) (Cache, error) {
	b, err := ParseBackend(spec)
	if err != nil {
		return nil, err
	}
	switch b.Kind {
	case BackendFile:
		return NewFileCache(b.Location)
	case BackendRedis:
		return NewRedisCache(ctx, b.Location)
	case BackendMongo:
		return NewMongoCache(ctx, b.Location, b.Database)
	default:
		return NewNullCache(), nil
	}
}

// Redact hides the password of a URL-shaped spec for logging.
func Redact(spec string) string {
	u, err := url.Parse(spec)
	if err != nil || u.User == nil {
		return spec
	}
	return u.Redacted()
}

// NullCache is the "none" backend: every Get misses and Set discards.
type NullCache struct{}

// NewNullCache returns the "none" backend.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
