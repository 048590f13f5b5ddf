package click

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config — аналитика вычислений в ClickHouse. Переменные: CALCULATOR_CLICKHOUSE_ENABLED, CALCULATOR_CLICKHOUSE_HOST и т.д.
type Config struct {
	Enabled     bool          `envconfig:"ENABLED" default:"false"`
	Host        string        `envconfig:"HOST" default:"localhost"`
	Port        string        `envconfig:"PORT" default:"9000"`
	Database    string        `envconfig:"DATABASE" default:"default"`
	Username    string        `envconfig:"USERNAME" default:"default"`
	Password    string        `envconfig:"PASSWORD"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
}

// Client — нативное соединение с ClickHouse.
type Client struct {
	conn     driver.Conn
	database string
}

// New подключается к ClickHouse по нативному протоколу и проверяет соединение пингом.
func New(cfg *Config) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), max(cfg.DialTimeout, time.Second))
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	return &Client{conn: conn, database: cfg.Database}, nil
}

// Conn возвращает соединение для запросов.
func (c *Client) Conn() driver.Conn {
	return c.conn
}

// Close закрывает соединение.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Ping проверяет соединение (для readiness).
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}
