package taxodb

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	taxerrors "github.com/matzehuels/taxotree/pkg/errors"
)

// Redis is a store in a Redis database. Keys are prefixed with Prefix.
type Redis struct {
	client *redis.Client
	Prefix string
}

// OpenRedis connects to the Redis server at url and checks that it
// answers.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrCodeInvalidInput, err, "parse redis url")
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "connect to redis %s", opt.Addr)
	}
	return &Redis{client: client, Prefix: prefix}, nil
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.Prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "get %q", key)
	}
	return v, true, nil
}

func (s *Redis) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.Prefix+key, value, 0).Err(); err != nil {
		return taxerrors.Wrap(taxerrors.ErrCodeStoreUnavailable, err, "put %q", key)
	}
	return nil
}

func (s *Redis) Close() error { return s.client.Close() }

var _ Writer = (*Redis)(nil)
