package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema выполняется на старте, чтобы таблицы существовали.
// Таблица projects создается первой из-за внешних ключей.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ledger_items (
    id UUID PRIMARY KEY,
    project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    section TEXT NOT NULL,
    name TEXT NOT NULL,
    quantity NUMERIC NOT NULL,
    rate NUMERIC NOT NULL,
    total_amount NUMERIC NOT NULL,
    sort_order INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ledger_payments (
    id UUID PRIMARY KEY,
    project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    section TEXT NOT NULL,
    payment_type TEXT NOT NULL,
    paid_on DATE NOT NULL,
    purpose TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    sort_order INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ledger_items_project ON ledger_items(project_id, section, sort_order);
CREATE INDEX IF NOT EXISTS idx_ledger_payments_project ON ledger_payments(project_id, section, sort_order);
`

// Migrate применяет схему базы данных.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return storeError(err)
}
