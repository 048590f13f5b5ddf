package calculator

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"undoCalc/internal/domain"
	"undoCalc/internal/history"
	"undoCalc/internal/memento"
	"undoCalc/internal/ports"
)

var _ ports.ICalculatorUseCase = (*UseCase)(nil)

// cacheKey формирует читаемый ключ операции для кэша, например "1 + 1".
// Используется символ операции, поэтому "add" и "+" делят одну запись кэша.
func cacheKey(calc domain.Calculation) string {
	return strconv.FormatFloat(calc.A, 'f', -1, 64) + " " + calc.Op.Symbol() + " " + strconv.FormatFloat(calc.B, 'f', -1, 64)
}

// UseCase — фасад калькулятора: фабрика, история, хранитель снимков и необязательные кэш и аналитика.
// Все методы сериализуются мьютексом: HTTP-обработчики вызывают фасад конкурентно.
type UseCase struct {
	mu         sync.Mutex
	history    *history.Store
	caretaker  *memento.Caretaker
	factory    Factory
	cache      ports.ICache
	analytics  ports.IOperationAnalytics
	legacyPath string
	log        *slog.Logger
	now        func() time.Time
}

// Option настраивает UseCase.
type Option func(*UseCase)

// WithCache подключает кэш результатов.
func WithCache(cache ports.ICache) Option {
	return func(u *UseCase) { u.cache = cache }
}

// WithAnalytics подключает запись вычислений в аналитику (для событий из брокера).
func WithAnalytics(analytics ports.IOperationAnalytics) Option {
	return func(u *UseCase) { u.analytics = analytics }
}

// WithFactory заменяет фабрику вычислений (например, с ограничением модуля операндов).
func WithFactory(f Factory) Option {
	return func(u *UseCase) { u.factory = f }
}

// WithCaretaker заменяет хранителя снимков (например, с ограничением глубины).
func WithCaretaker(c *memento.Caretaker) Option {
	return func(u *UseCase) { u.caretaker = c }
}

// WithLegacyPath задаёт файл истории прежней версии, из которого Load читает, если основного файла нет.
func WithLegacyPath(path string) Option {
	return func(u *UseCase) { u.legacyPath = path }
}

// WithClock подменяет источник времени для меток записей.
func WithClock(now func() time.Time) Option {
	return func(u *UseCase) { u.now = now }
}

// New создаёт фасад над store и сразу сохраняет снимок начального состояния,
// чтобы первая отмена после вычисления возвращала историю к исходной.
func New(store *history.Store, log *slog.Logger, opts ...Option) *UseCase {
	if log == nil {
		log = slog.Default()
	}
	u := &UseCase{
		history:   store,
		caretaker: memento.NewCaretaker(0),
		factory:   NewFactory(0),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	u.caretaker.Save(u.history.Records())
	return u
}
