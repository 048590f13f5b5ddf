// Package testutil поднимает контейнеры инфраструктуры для интеграционных тестов
// и выдаёт готовые конфиги адаптеров undoCalc.
package testutil

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"undoCalc/internal/infrastructure/click"
	"undoCalc/internal/infrastructure/mongo"
	"undoCalc/internal/infrastructure/pg"
	calcredis "undoCalc/internal/infrastructure/redis"
)

// Terminator — контейнер, который умеет останавливаться.
type Terminator interface {
	Terminate(ctx context.Context, opts ...testcontainers.TerminateOption) error
}

// Endpoint — хост и проброшенный порт контейнера.
type Endpoint struct {
	Host string
	Port string
}

// endpoint разбирает результат Container.PortEndpoint ("host:port") в Endpoint.
func endpoint(hostPort string, err error) (Endpoint, error) {
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint: %w", err)
	}
	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint %q: %w", hostPort, err)
	}
	return Endpoint{Host: host, Port: port}, nil
}

const (
	pgUser     = "calc"
	pgPassword = "calc"
	pgDatabase = "undocalc"
)

// PostgresContainer — PostgreSQL для зеркала истории.
type PostgresContainer struct {
	*postgres.PostgresContainer
	Endpoint
}

// NewPostgresContainer поднимает PostgreSQL.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	c, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres container: %w", err)
	}
	ep, err := endpoint(c.PortEndpoint(ctx, "5432/tcp", ""))
	if err != nil {
		return nil, fmt.Errorf("postgres %w", err)
	}
	return &PostgresContainer{PostgresContainer: c, Endpoint: ep}, nil
}

// Config возвращает конфиг адаптера pg.
func (c *PostgresContainer) Config() *pg.Config {
	return &pg.Config{
		Enabled:        true,
		Host:           c.Host,
		Port:           c.Port,
		User:           pgUser,
		Password:       pgPassword,
		DBName:         pgDatabase,
		SSLMode:        "disable",
		MaxOpenConns:   2,
		ConnectTimeout: 5 * time.Second,
	}
}

// RedisContainer — Redis для кэша результатов.
type RedisContainer struct {
	*redis.RedisContainer
	Endpoint
}

// NewRedisContainer поднимает Redis.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	c, err := redis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("redis container: %w", err)
	}
	ep, err := endpoint(c.PortEndpoint(ctx, "6379/tcp", ""))
	if err != nil {
		return nil, fmt.Errorf("redis %w", err)
	}
	return &RedisContainer{RedisContainer: c, Endpoint: ep}, nil
}

// Config возвращает конфиг адаптера redis.
func (c *RedisContainer) Config() *calcredis.Config {
	return &calcredis.Config{Enabled: true, Host: c.Host, Port: c.Port, DialTimeout: 3 * time.Second}
}

// MongoContainer — MongoDB для альтернативного зеркала истории.
type MongoContainer struct {
	*mongodb.MongoDBContainer
	Endpoint
}

// NewMongoContainer поднимает MongoDB.
func NewMongoContainer(ctx context.Context) (*MongoContainer, error) {
	c, err := mongodb.Run(ctx, "mongo:7",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Waiting for connections").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("mongo container: %w", err)
	}
	ep, err := endpoint(c.PortEndpoint(ctx, "27017/tcp", ""))
	if err != nil {
		return nil, fmt.Errorf("mongo %w", err)
	}
	return &MongoContainer{MongoDBContainer: c, Endpoint: ep}, nil
}

// Config возвращает конфиг адаптера mongo для базы database.
func (c *MongoContainer) Config(database string) *mongo.Config {
	return &mongo.Config{
		Enabled:        true,
		URI:            fmt.Sprintf("mongodb://%s:%s", c.Host, c.Port),
		Database:       database,
		Collection:     "operations",
		ConnectTimeout: 10 * time.Second,
	}
}

// ClickHouseContainer — ClickHouse для аналитики.
type ClickHouseContainer struct {
	*clickhouse.ClickHouseContainer
	Endpoint
}

// NewClickHouseContainer поднимает ClickHouse и отдаёт нативный порт.
func NewClickHouseContainer(ctx context.Context) (*ClickHouseContainer, error) {
	c, err := clickhouse.Run(ctx, "clickhouse/clickhouse-server:24-alpine",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse container: %w", err)
	}
	ep, err := endpoint(c.PortEndpoint(ctx, "9000/tcp", ""))
	if err != nil {
		return nil, fmt.Errorf("clickhouse %w", err)
	}
	return &ClickHouseContainer{ClickHouseContainer: c, Endpoint: ep}, nil
}

// Config возвращает конфиг адаптера click.
func (c *ClickHouseContainer) Config() *click.Config {
	return &click.Config{
		Enabled:     true,
		Host:        c.Host,
		Port:        c.Port,
		Database:    "default",
		Username:    "default",
		DialTimeout: 5 * time.Second,
	}
}
