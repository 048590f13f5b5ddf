package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

// fetcher — часть kafka.Reader, которой пользуется Consumer.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает записи истории из топика и передаёт их в use case (аналитика).
type Consumer struct {
	r   fetcher
	uc  ports.ICalculatorUseCase
	log *slog.Logger
}

// NewConsumer создаёт консьюмера в consumer group из конфига. После использования вызови Close().
func NewConsumer(cfg *Config, uc ports.ICalculatorUseCase, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.brokers(),
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	return &Consumer{r: r, uc: uc, log: log.With("topic", cfg.Topic, "group", cfg.GroupID)}
}

// Run читает сообщения до отмены ctx или ошибки чтения.
// Битые сообщения коммитятся и пропускаются; при ошибке обработки сообщение не коммитится
// и будет перечитано группой после перезапуска.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		commit, err := c.handle(ctx, msg)
		if err != nil {
			c.log.Warn("kafka message not handled", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
		if !commit {
			continue
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

// errPoison — сообщение, которое никогда не удастся обработать.
var errPoison = errors.New("undecodable history record")

// handle обрабатывает одно сообщение и сообщает, нужно ли его коммитить.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) (commit bool, err error) {
	rec, err := decodeRecord(msg.Value)
	if err != nil {
		return true, fmt.Errorf("%w: %v", errPoison, err)
	}
	if err := c.uc.HandleOperationEvent(ctx, rec); err != nil {
		return false, err
	}
	c.log.Debug("kafka record handled", "key", string(msg.Key))
	return true, nil
}

func decodeRecord(value []byte) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return domain.Record{}, err
	}
	if rec.Operation == "" {
		return domain.Record{}, errors.New("record without operation")
	}
	return rec, nil
}

// Close закрывает консьюмера.
func (c *Consumer) Close() error {
	return c.r.Close()
}
