package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Config — зеркало истории в MongoDB. Переменные: CALCULATOR_MONGO_ENABLED, CALCULATOR_MONGO_URI и т.д.
type Config struct {
	Enabled        bool          `envconfig:"ENABLED" default:"false"`
	URI            string        `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"DATABASE" default:"undocalc"`
	Collection     string        `envconfig:"COLLECTION" default:"operations"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
}

// Client — подключение к MongoDB и коллекция истории.
type Client struct {
	*mongo.Client
	coll *mongo.Collection
}

// New подключается к MongoDB, проверяет соединение и создаёт индекс по времени записи.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	timeout := max(cfg.ConnectTimeout, time.Second)
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	c := &Client{Client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}
	if _, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return c, nil
}

// Coll возвращает коллекцию истории.
func (c *Client) Coll() *mongo.Collection {
	return c.coll
}

// Close отключается от MongoDB.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Disconnect(ctx)
}
