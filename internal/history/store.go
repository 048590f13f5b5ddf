// Package history хранит упорядоченную историю вычислений, уведомляет наблюдателей
// о её изменениях и сохраняет её в CSV.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/text/encoding"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

var historyEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "calculator_history_events_total",
		Help: "Total number of history events by kind",
	},
	[]string{"event"},
)

// Store — история вычислений в памяти. Порядок вставки сохраняется.
// Store не потокобезопасен: его владелец (фасад калькулятора) сериализует вызовы.
type Store struct {
	path      string
	maxSize   int
	enc       encoding.Encoding
	records   []domain.Record
	observers []ports.IHistoryObserver
	log       *slog.Logger
}

// Option настраивает Store.
type Option func(*Store)

// WithPath задаёт путь по умолчанию для Save и Load.
func WithPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithMaxSize ограничивает число хранимых записей; старые записи вытесняются. 0 — без ограничения.
func WithMaxSize(n int) Option {
	return func(s *Store) { s.maxSize = n }
}

// WithEncoding задаёт кодировку CSV-файла. По умолчанию UTF-8.
func WithEncoding(enc encoding.Encoding) Option {
	return func(s *Store) { s.enc = enc }
}

// New создаёт пустую историю.
func New(log *slog.Logger, opts ...Option) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach подключает наблюдателя в конец списка.
func (s *Store) Attach(o ports.IHistoryObserver) {
	s.observers = append(s.observers, o)
}

// Detach отключает наблюдателя. Отключение неизвестного наблюдателя ничего не делает.
func (s *Store) Detach(o ports.IHistoryObserver) {
	if i := slices.Index(s.observers, o); i >= 0 {
		s.observers = slices.Delete(s.observers, i, i+1)
	}
}

// Path возвращает путь по умолчанию.
func (s *Store) Path() string {
	return s.path
}

// Encoding возвращает кодировку файла истории (nil — UTF-8).
func (s *Store) Encoding() encoding.Encoding {
	return s.enc
}

// Len возвращает число записей.
func (s *Store) Len() int {
	return len(s.records)
}

// Records возвращает независимую копию записей.
func (s *Store) Records() []domain.Record {
	return slices.Clone(s.records)
}

// Restore целиком заменяет записи копией recs без уведомления наблюдателей (установка снимка undo/redo,
// начальная загрузка из зеркала). Лишние старые записи отбрасываются по лимиту.
func (s *Store) Restore(recs []domain.Record) {
	s.records = slices.Clone(recs)
	s.trim()
}

// Add добавляет запись и уведомляет наблюдателей событием added.
func (s *Store) Add(ctx context.Context, rec domain.Record) {
	s.records = append(s.records, rec)
	s.trim()
	s.notify(ctx, domain.HistoryEvent{Kind: domain.EventAdded, Record: &rec})
}

// Save записывает всю историю в CSV по path или по пути по умолчанию.
func (s *Store) Save(ctx context.Context, path string) error {
	p, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := WriteFile(p, s.records, s.enc); err != nil {
		return err
	}
	s.log.Debug("history saved", "path", p, "records", len(s.records))
	s.notify(ctx, domain.HistoryEvent{Kind: domain.EventSaved, Path: p})
	return nil
}

// Load целиком заменяет историю содержимым CSV-файла. Незаданный путь, как и
// отсутствующий файл, дают domain.ErrNotFound.
func (s *Store) Load(ctx context.Context, path string) error {
	p, err := s.resolve(path)
	if err != nil {
		return fmt.Errorf("%w: no history path specified", domain.ErrNotFound)
	}
	recs, err := ReadFile(p, s.enc)
	if err != nil {
		return err
	}
	s.records = recs
	s.trim()
	s.log.Debug("history loaded", "path", p, "records", len(s.records))
	s.notify(ctx, domain.HistoryEvent{Kind: domain.EventLoaded, Path: p})
	return nil
}

// Clear очищает историю и уведомляет наблюдателей событием cleared.
func (s *Store) Clear(ctx context.Context) {
	s.records = nil
	s.notify(ctx, domain.HistoryEvent{Kind: domain.EventCleared})
}

func (s *Store) resolve(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if s.path != "" {
		return s.path, nil
	}
	return "", fmt.Errorf("%w: no history path specified", domain.ErrConfiguration)
}

func (s *Store) trim() {
	if s.maxSize > 0 && len(s.records) > s.maxSize {
		s.records = slices.Clone(s.records[len(s.records)-s.maxSize:])
	}
}

// notify вызывает наблюдателей синхронно по порядку подключения. Ошибка или паника
// одного наблюдателя логируется и не мешает остальным.
func (s *Store) notify(ctx context.Context, ev domain.HistoryEvent) {
	historyEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	for _, o := range slices.Clone(s.observers) {
		s.dispatch(ctx, o, ev)
	}
}

func (s *Store) dispatch(ctx context.Context, o ports.IHistoryObserver, ev domain.HistoryEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("history observer panicked", "event", ev.Kind, "panic", r)
		}
	}()
	if err := o.Update(ctx, ev); err != nil {
		s.log.Warn("history observer failed", "event", ev.Kind, "error", err)
	}
}
