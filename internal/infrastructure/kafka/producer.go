package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"undoCalc/internal/ports"
)

var _ ports.IProducer = (*Producer)(nil)

// Producer публикует записи истории в топик. Сообщения с одинаковым ключом
// (одно и то же выражение) попадают в одну партицию.
type Producer struct {
	w   *kafka.Writer
	now func() time.Time
}

// NewProducer создаёт продюсера. Соединение с брокером устанавливается при первой отправке.
func NewProducer(cfg *Config) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.brokers()...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           cfg.WriteTimeout,
			AllowAutoTopicCreation: true,
		},
		now: time.Now,
	}
}

// Send синхронно отправляет одно сообщение.
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{Key: key, Value: value, Time: p.now()})
}

// Close дожидается отправки буфера и закрывает writer.
func (p *Producer) Close() error {
	return p.w.Close()
}
