// Package repo implementa store.Store sobre database/sql (Postgres ou SQLite).
package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/bet-market-engine/internal/shared/db"
	"github.com/radieske/bet-market-engine/internal/store"
)

// DBTX é o subconjunto comum entre *sql.DB e *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db DBTX
	d  Dialect
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.d.rebind(query), args...)
	return res, q.d.wrap(err)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.d.rebind(query), args...)
	return rows, q.d.wrap(err)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.rebind(query), args...)
}

// Repo é o store completo; fora de WithTx cada chamada roda em autocommit
type Repo struct {
	*queries
	conn *sql.DB
}

var _ store.Store = (*Repo)(nil)

func New(conn *sql.DB, d Dialect) *Repo {
	return &Repo{queries: &queries{db: conn, d: d}, conn: conn}
}

// Open conecta no banco do driver configurado e aplica o schema
func Open(ctx context.Context, driver, dsn string) (*Repo, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	conn, err := db.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	r := New(conn, d)
	if err := r.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return r, nil
}

// Migrate cria as tabelas do dialeto (idempotente)
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.conn.ExecContext(ctx, r.d.schema); err != nil {
		return fmt.Errorf("migrate %s: %w", r.d.Name, err)
	}
	return nil
}

// WithTx abre uma transação, executa fn e confirma; qualquer erro faz rollback total.
// Falhas no commit viram store.ErrConflict (nada foi aplicado).
func (r *Repo) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return r.d.wrap(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx, d: r.d}); err != nil {
		return r.d.wrap(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", store.ErrConflict, err)
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error { return r.conn.PingContext(ctx) }

func (r *Repo) Close() error { return r.conn.Close() }
