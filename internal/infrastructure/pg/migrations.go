package pg

import (
	"context"
)

const createOperationsTable = `
CREATE TABLE IF NOT EXISTS operations (
	id         SERIAL PRIMARY KEY,
	operation  VARCHAR(32) NOT NULL,
	a          DOUBLE PRECISION NOT NULL,
	b          DOUBLE PRECISION NOT NULL,
	result     DOUBLE PRECISION,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate создаёт таблицу operations, если её ещё нет.
func Migrate(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, createOperationsTable)
	return err
}
