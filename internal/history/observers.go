package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/text/encoding"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

var (
	_ ports.IHistoryObserver = (*LoggingObserver)(nil)
	_ ports.IHistoryObserver = (*AutoSaveObserver)(nil)
	_ ports.IHistoryObserver = (*RepositoryObserver)(nil)
	_ ports.IHistoryObserver = (*BrokerObserver)(nil)
)

// LoggingObserver пишет по одной структурированной строке на каждое событие истории.
type LoggingObserver struct {
	log *slog.Logger
}

// NewLoggingObserver создаёт наблюдателя, пишущего в log (обычно логгер файла calculator.log).
func NewLoggingObserver(log *slog.Logger) *LoggingObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingObserver{log: log}
}

// Update логирует событие и его полезную нагрузку.
func (o *LoggingObserver) Update(ctx context.Context, ev domain.HistoryEvent) error {
	attrs := []any{"event", string(ev.Kind)}
	if ev.Record != nil {
		attrs = append(attrs, recordAttrs(*ev.Record)...)
	}
	if ev.Path != "" {
		attrs = append(attrs, "path", ev.Path)
	}
	o.log.InfoContext(ctx, "history event", attrs...)
	return nil
}

func recordAttrs(r domain.Record) []any {
	attrs := []any{"operation", r.Operation, "a", r.A, "b", r.B}
	if r.Succeeded() {
		return append(attrs, "result", r.Result)
	}
	return append(attrs, "error", r.Err)
}

// AutoSaveObserver после каждой добавленной записи сохраняет всю историю в файл.
// Ошибки ввода-вывода не выходят за пределы наблюдателя.
type AutoSaveObserver struct {
	store *Store
	path  string
	enc   encoding.Encoding
	log   *slog.Logger
}

// NewAutoSaveObserver создаёт наблюдателя автосохранения store в path.
func NewAutoSaveObserver(store *Store, path string, log *slog.Logger) *AutoSaveObserver {
	if log == nil {
		log = slog.Default()
	}
	return &AutoSaveObserver{store: store, path: path, enc: store.Encoding(), log: log}
}

// Update сохраняет историю только на событие added.
func (o *AutoSaveObserver) Update(_ context.Context, ev domain.HistoryEvent) error {
	if ev.Kind != domain.EventAdded {
		return nil
	}
	if err := WriteFile(o.path, o.store.Records(), o.enc); err != nil {
		o.log.Debug("autosave failed", "path", o.path, "error", err)
	}
	return nil
}

// RepositoryObserver зеркалирует добавленные записи во внешнюю БД (PostgreSQL или MongoDB).
type RepositoryObserver struct {
	repo ports.IOperationRepository
}

// NewRepositoryObserver создаёт наблюдателя-зеркало.
func NewRepositoryObserver(repo ports.IOperationRepository) *RepositoryObserver {
	return &RepositoryObserver{repo: repo}
}

// Update сохраняет запись на событие added.
func (o *RepositoryObserver) Update(ctx context.Context, ev domain.HistoryEvent) error {
	if ev.Kind != domain.EventAdded || ev.Record == nil {
		return nil
	}
	if err := o.repo.SaveOperation(ctx, *ev.Record); err != nil {
		return fmt.Errorf("mirror record: %w", err)
	}
	return nil
}

// BrokerObserver публикует добавленные записи в брокер в виде JSON.
type BrokerObserver struct {
	producer ports.IProducer
}

// NewBrokerObserver создаёт наблюдателя-публикатора.
func NewBrokerObserver(producer ports.IProducer) *BrokerObserver {
	return &BrokerObserver{producer: producer}
}

// Update публикует запись на событие added. Ключ сообщения, например "1 + 2".
func (o *BrokerObserver) Update(ctx context.Context, ev domain.HistoryEvent) error {
	if ev.Kind != domain.EventAdded || ev.Record == nil {
		return nil
	}
	value, err := json.Marshal(ev.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := o.producer.Send(ctx, []byte(RecordKey(*ev.Record)), value); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

// RecordKey формирует читаемый ключ записи, например "1 + 2".
func RecordKey(r domain.Record) string {
	return strconv.FormatFloat(r.A, 'f', -1, 64) + " " + r.Operation + " " + strconv.FormatFloat(r.B, 'f', -1, 64)
}
