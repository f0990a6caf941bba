package idempotencyrepo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "booking:idem:"

// pending marks a key that is claimed but not yet bound to a reference.
const pending = "-"

type Repo interface {
	// Claim reserves key. When the key is already taken it returns the
	// reference bound to it, or "" while the first request is still running.
	Claim(ctx context.Context, key string) (claimed bool, ref string, err error)
	Bind(ctx context.Context, key, ref string) error
	Release(ctx context.Context, key string) error
}

type repo struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) Repo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &repo{rdb: rdb, ttl: ttl}
}

func (r *repo) Claim(ctx context.Context, key string) (bool, string, error) {
	ok, err := r.rdb.SetNX(ctx, keyPrefix+key, pending, r.ttl).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "", nil
	}
	v, err := r.rdb.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; the caller may retry
		return false, "", nil
	}
	if err != nil {
		return false, "", err
	}
	if v == pending {
		return false, "", nil
	}
	return false, v, nil
}

func (r *repo) Bind(ctx context.Context, key, ref string) error {
	return r.rdb.Set(ctx, keyPrefix+key, ref, r.ttl).Err()
}

func (r *repo) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, keyPrefix+key).Err()
}

// ParseURL accepts either a redis:// URL or a bare host:port.
func ParseURL(raw string) (*redis.Options, error) {
	if opt, err := redis.ParseURL(raw); err == nil {
		return opt, nil
	}
	if raw == "" {
		return nil, errors.New("empty redis address")
	}
	return &redis.Options{Addr: raw}, nil
}
