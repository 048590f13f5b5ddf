package ports

//go:generate mockgen -source=observer.go -destination=../mocks/observer_mock.go -package=mocks

import (
	"context"

	"undoCalc/internal/domain"
)

// IHistoryObserver получает события истории синхронно, в порядке подключения.
// Ошибка наблюдателя не прерывает операцию и не влияет на остальных наблюдателей.
type IHistoryObserver interface {
	Update(ctx context.Context, ev domain.HistoryEvent) error
}
