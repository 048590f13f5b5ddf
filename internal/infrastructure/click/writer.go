package click

import (
	"context"
	"fmt"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

const analyticsTable = "operations_analytics"

var _ ports.IOperationAnalytics = (*OperationWriter)(nil)

// OperationWriter пишет записи истории в таблицу аналитики: удобно считать
// популярность операций, долю ошибок и нагрузку по времени.
type OperationWriter struct {
	db    *Client
	table string
}

// NewOperationWriter создаёт писатель для базы из конфига клиента.
func NewOperationWriter(db *Client) *OperationWriter {
	return &OperationWriter{db: db, table: db.database + "." + analyticsTable}
}

// Table возвращает полное имя таблицы аналитики.
func (w *OperationWriter) Table() string {
	return w.table
}

// EnsureTable создаёт таблицу, если её нет. Вызывается один раз при старте.
func (w *OperationWriter) EnsureTable(ctx context.Context) error {
	return w.db.conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			operation  LowCardinality(String),
			a          Float64,
			b          Float64,
			result     Nullable(Float64),
			error      String,
			succeeded  Bool,
			created_at DateTime64(3, 'UTC')
		) ENGINE = MergeTree
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (operation, created_at)`, w.table))
}

// WriteOperation реализует ports.IOperationAnalytics.
func (w *OperationWriter) WriteOperation(ctx context.Context, rec domain.Record) error {
	var result *float64
	if rec.Succeeded() {
		r := rec.Result
		result = &r
	}
	err := w.db.conn.Exec(ctx,
		fmt.Sprintf("INSERT INTO %s (operation, a, b, result, error, succeeded, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", w.table),
		rec.Operation, rec.A, rec.B, result, rec.Err, rec.Succeeded(), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", w.table, err)
	}
	return nil
}
