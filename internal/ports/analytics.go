package ports

//go:generate mockgen -source=analytics.go -destination=../mocks/analytics_mock.go -package=mocks

import (
	"context"

	"undoCalc/internal/domain"
)

// IOperationAnalytics — запись вычислений в хранилище для аналитики (например, ClickHouse).
type IOperationAnalytics interface {
	WriteOperation(ctx context.Context, rec domain.Record) error
}
