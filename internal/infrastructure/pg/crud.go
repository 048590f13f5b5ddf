package pg

import (
	"context"
	"database/sql"
	"log/slog"

	"undoCalc/internal/domain"
	"undoCalc/internal/ports"
)

var _ ports.IOperationRepository = (*OperationRepo)(nil)

// OperationRepo реализует ports.IOperationRepository для PostgreSQL: зеркало истории калькулятора.
type OperationRepo struct {
	db  *DB
	log *slog.Logger
}

// NewOperationRepo возвращает репозиторий операций.
func NewOperationRepo(db *DB, log *slog.Logger) *OperationRepo {
	return &OperationRepo{db: db, log: log}
}

// SaveOperation сохраняет запись. Для неудачного вычисления result пишется как NULL, для успешного NULL — error.
func (r *OperationRepo) SaveOperation(ctx context.Context, rec domain.Record) error {
	var result sql.NullFloat64
	var errMsg sql.NullString
	if rec.Succeeded() {
		result = sql.NullFloat64{Float64: rec.Result, Valid: true}
	} else {
		errMsg = sql.NullString{String: rec.Err, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO operations (operation, a, b, result, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Operation, rec.A, rec.B, result, errMsg, rec.Timestamp)
	if err != nil {
		r.log.Debug("SaveOperation failed", "error", err)
		return err
	}
	return nil
}

// GetHistory возвращает записи в порядке вставки.
func (r *OperationRepo) GetHistory(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT operation, a, b, result, error, created_at
		 FROM operations ORDER BY created_at, id`)
	if err != nil {
		r.log.Debug("GetHistory failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	var list []domain.Record
	for rows.Next() {
		var rec domain.Record
		var result sql.NullFloat64
		var errMsg sql.NullString
		if err := rows.Scan(&rec.Operation, &rec.A, &rec.B, &result, &errMsg, &rec.Timestamp); err != nil {
			return nil, err
		}
		rec.Result = result.Float64
		rec.Err = errMsg.String
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Ping проверяет доступность БД (readiness).
func (r *OperationRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
