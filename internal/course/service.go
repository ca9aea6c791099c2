package course

// service.go wires the catalog's read path: cache-aside lookups backed
// by the store. The cache is a pure performance layer -- the store is
// always the source of truth and every cache failure (disconnected
// backend, stale JSON, refused write) silently degrades to a store
// read. Lookups report whether they were served from cache, which is
// observability only and carries no behavioral difference.

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Cache key layout and expiry classes, shared with any future consumer
// of the same Redis instance.
const (
	keyCourseByID = "course:id:"
	keyAllCourses = "course:all"

	ttlCourseByID = time.Hour
	ttlAllCourses = 30 * time.Minute
)

// Store is the persistence boundary for courses.
type Store interface {
	// FindOne returns the course with the given course_id, or
	// ErrNotFound.
	FindOne(ctx context.Context, courseID string) (*Course, error)

	// FindAll returns every course in the catalog.
	FindAll(ctx context.Context) ([]Course, error)

	// InsertMany performs an unordered bulk insert and returns how many
	// records were actually written. A duplicate course_id skips that
	// record without failing the rest.
	InsertMany(ctx context.Context, records []Course) (int, error)
}

// Cache is the key-value cache boundary. Implementations must be total:
// an unreachable backend reads as a miss and writes as a refused set,
// never an error.
type Cache interface {
	IsConnected() bool
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
}

// Service exposes the catalog operations used by the HTTP layer.
type Service struct {
	store Store
	cache Cache
}

// NewService creates a Service over the given store and cache.
func NewService(store Store, cache Cache) *Service {
	return &Service{store: store, cache: cache}
}

// GetByID returns the course with the given course_id. The second
// return value reports whether the response was served from cache.
func (s *Service) GetByID(ctx context.Context, id string) (*Course, bool, error) {
	key := keyCourseByID + id

	if raw, ok := s.cache.Get(ctx, key); ok {
		var c Course
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			return &c, true, nil
		}
		// Undecodable entry is a miss; the store rebuilds it below.
		slog.WarnContext(ctx, "discarding corrupt cache entry", "key", key)
	}

	c, err := s.store.FindOne(ctx, id)
	if err != nil {
		return nil, false, err
	}

	s.cacheSet(ctx, key, c, ttlCourseByID)
	return c, false, nil
}

// GetAll returns every course. The second return value reports whether
// the response was served from cache.
func (s *Service) GetAll(ctx context.Context) ([]Course, bool, error) {
	if raw, ok := s.cache.Get(ctx, keyAllCourses); ok {
		var list []Course
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list, true, nil
		}
		slog.WarnContext(ctx, "discarding corrupt cache entry", "key", keyAllCourses)
	}

	list, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, false, err
	}

	s.cacheSet(ctx, keyAllCourses, list, ttlAllCourses)
	return list, false, nil
}

// cacheSet serializes v and writes it through. A disconnected backend
// skips the write entirely; refused writes are logged at debug and
// otherwise ignored.
func (s *Service) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	if !s.cache.IsConnected() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if !s.cache.Set(ctx, key, string(data), ttl) {
		slog.DebugContext(ctx, "cache write refused", "key", key)
	}
}
