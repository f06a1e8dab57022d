package preset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when the shared preset key does not exist.
var ErrNotFound = errors.New("preset not found")

// RedisStore keeps preset documents in redis so several managers can share one list.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key prefix, "gopool:preset" by default.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// NewRedisStore wraps rdb.
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "gopool:preset",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

// Load reads the named preset document.
func (s *RedisStore) Load(ctx context.Context, name string) (*Document, error) {
	data, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %q: %w", name, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	doc.Name = name
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}

	return doc, nil
}

// Push validates doc and stores it under its name.
func (s *RedisStore) Push(ctx context.Context, doc *Document) error {
	if doc.Name == "" {
		return fmt.Errorf("%w: document has no name", ErrInvalid)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(doc.Name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store preset %q: %w", doc.Name, err)
	}

	return nil
}

// Delete removes the named preset.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	return s.rdb.Del(ctx, s.key(name)).Err()
}

// Names lists the stored preset names in order.
func (s *RedisStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	sort.Strings(names)

	return names, nil
}
