package ports

//go:generate mockgen -source=usecase.go -destination=../mocks/usecase_mock.go -package=mocks

import (
	"context"

	"undoCalc/internal/domain"
)

// ICalculatorUseCase — контракт фасада калькулятора: вычисление, история, отмена и повтор, сохранение и загрузка.
type ICalculatorUseCase interface {
	Evaluate(ctx context.Context, token string, a, b any) (*domain.Record, error)
	History(ctx context.Context) []domain.Record
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
	Save(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
	Clear(ctx context.Context)
	HandleOperationEvent(ctx context.Context, rec domain.Record) error
}
