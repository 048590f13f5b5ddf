package ports

//go:generate mockgen -source=repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"undoCalc/internal/domain"
)

// IOperationRepository — контракт зеркалирования истории во внешнюю БД.
type IOperationRepository interface {
	SaveOperation(ctx context.Context, rec domain.Record) error
	GetHistory(ctx context.Context) ([]domain.Record, error)
	Ping(ctx context.Context) error
}
