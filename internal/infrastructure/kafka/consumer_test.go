package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"undoCalc/internal/domain"
	"undoCalc/internal/mocks"
)

var testTime = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

// fakeReader отдаёт сообщения из очереди, затем ждёт отмены ctx или возвращает fetchErr.
type fakeReader struct {
	queue     []kafka.Message
	fetchErr  error
	committed []int64
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.queue) > 0 {
		msg := f.queue[0]
		f.queue = f.queue[1:]
		return msg, nil
	}
	if f.fetchErr != nil {
		return kafka.Message{}, f.fetchErr
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func message(t *testing.T, offset int64, rec domain.Record) kafka.Message {
	t.Helper()
	value, err := json.Marshal(rec)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func newTestConsumer(t *testing.T, r *fakeReader) (*Consumer, *mocks.MockICalculatorUseCase) {
	t.Helper()
	uc := mocks.NewMockICalculatorUseCase(gomock.NewController(t))
	return &Consumer{r: r, uc: uc, log: slog.New(slog.NewTextHandler(io.Discard, nil))}, uc
}

func TestDecodeRecord(t *testing.T) {
	want := domain.NewFailure("/", 1, 0, domain.ErrDivisionByZero, testTime)
	value, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := decodeRecord(value)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeRecord_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "не JSON", value: "not json"},
		{name: "без операции", value: `{"a":1,"b":2,"result":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRecord([]byte(tt.value))
			assert.Error(t, err)
		})
	}
}

func TestConsumer_Run(t *testing.T) {
	good := domain.NewSuccess("+", 1, 2, 3, testTime)
	failing := domain.NewSuccess("*", 2, 2, 4, testTime)
	r := &fakeReader{queue: []kafka.Message{
		message(t, 1, good),
		{Offset: 2, Value: []byte("garbage")},
		message(t, 3, failing),
	}}
	c, uc := newTestConsumer(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	uc.EXPECT().HandleOperationEvent(gomock.Any(), good).Return(nil)
	uc.EXPECT().HandleOperationEvent(gomock.Any(), failing).DoAndReturn(func(context.Context, domain.Record) error {
		cancel()
		return errors.New("clickhouse down")
	})

	err := c.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{1, 2}, r.committed, "битое сообщение коммитится, неудачно обработанное нет")
}

func TestConsumer_RunFetchError(t *testing.T) {
	boom := errors.New("broker unreachable")
	c, _ := newTestConsumer(t, &fakeReader{fetchErr: boom})

	err := c.Run(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestConfig_Brokers(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{name: "пусто", cfg: Config{}, want: []string{"localhost:9092"}},
		{name: "только пробелы", cfg: Config{Brokers: []string{" ", ""}}, want: []string{"localhost:9092"}},
		{name: "несколько брокеров с пробелами", cfg: Config{Brokers: []string{"a:1", " b:2 ", "c:3"}}, want: []string{"a:1", "b:2", "c:3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.brokers())
		})
	}
}
