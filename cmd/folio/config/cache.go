package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/duration"

	"github.com/folio-cms/folio/settings"
)

// CachingConf configures the settings cache
type CachingConf struct {
	RedisAddr   string                  `yaml:"redis_addr"`
	Username    string                  `yaml:"username"`
	Password    string                  `yaml:"password"`
	RedisDB     int                     `yaml:"redis_db"`
	KeyPrefix   string                  `yaml:"key_prefix"`
	Disabled    bool                    `yaml:"disabled"`
	MaxLifetime duration.DurationOption `yaml:"max_lifetime"`
}

func (c *CachingConf) validate() error {
	if c.MaxLifetime.Duration() < 0 {
		return errors.New("error in caching conf: max_lifetime must not be negative")
	}
	if c.RedisDB < 0 {
		return errors.New("error in caching conf: redis_db must not be negative")
	}
	return nil
}

var defaultCachingConf = CachingConf{
	KeyPrefix:   "folio:",
	MaxLifetime: duration.DurationOption(time.Hour),
}

// LoadRedisBackend connects to the configured redis and returns a settings
// cache backend on it together with a function closing the connection. It
// returns a nil backend if no redis is configured or caching is disabled.
func LoadRedisBackend(ctx context.Context, c CachingConf) (*settings.RedisBackend, func(), error) {
	if c.Disabled || c.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(
		&redis.Options{
			Addr:     c.RedisAddr,
			Username: c.Username,
			Password: c.Password,
			DB:       c.RedisDB,
		},
	)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, func() {}, errors.Wrapf(err, "could not connect to redis at '%s'", c.RedisAddr)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Error("could not close redis client")
		}
	}
	return settings.NewRedisBackend(client, c.KeyPrefix), closeFn, nil
}
