package kafka

import (
	"strings"
	"time"
)

// Config — брокер событий истории. Переменные: CALCULATOR_KAFKA_ENABLED, CALCULATOR_KAFKA_BROKERS и т.д.
// BROKERS — список через запятую.
type Config struct {
	Enabled      bool          `envconfig:"ENABLED" default:"false"`
	Brokers      []string      `envconfig:"BROKERS" default:"localhost:9092"`
	Topic        string        `envconfig:"TOPIC" default:"undocalc.history"`
	GroupID      string        `envconfig:"GROUP_ID" default:"undocalc-analytics"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
}

// brokers возвращает адреса без пробелов и пустых элементов.
func (c *Config) brokers() []string {
	out := make([]string, 0, len(c.Brokers))
	for _, b := range c.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return []string{"localhost:9092"}
	}
	return out
}
