package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config — кэш результатов в Redis. Переменные: CALCULATOR_REDIS_ENABLED, CALCULATOR_REDIS_HOST и т.д.
// TTL == 0 — записи живут без срока.
type Config struct {
	Enabled     bool          `envconfig:"ENABLED" default:"false"`
	Host        string        `envconfig:"HOST" default:"localhost"`
	Port        string        `envconfig:"PORT" default:"6379"`
	Password    string        `envconfig:"PASSWORD"`
	DB          int           `envconfig:"DB" default:"0"`
	TTL         time.Duration `envconfig:"TTL" default:"0"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" default:"3s"`
}

// Client — подключение к Redis.
type Client struct {
	*redis.Client
}

// New подключается к Redis и проверяет соединение пингом.
func New(cfg *Config) (*Client, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), max(cfg.DialTimeout, time.Second))
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cli.Options().Addr, err)
	}
	return &Client{Client: cli}, nil
}

// Ping проверяет соединение (для readiness).
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
