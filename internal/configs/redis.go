package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/rueidis"
)

const redisPingTimeout = 3 * time.Second

// NewRedisClient connects to the metadata cache server and checks it answers.
// Client side caching stays off so servers without RESP3 work too.
func NewRedisClient(cfg Config) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.RedisAddr},
		Password:     cfg.RedisPassword,
		SelectDB:     cfg.RedisDB,
		DisableCache: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to redis at %s", cfg.RedisAddr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", cfg.RedisAddr)
	}
	return client, nil
}
