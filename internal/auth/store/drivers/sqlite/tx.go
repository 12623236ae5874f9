package sqlite

import (
	"context"
	"database/sql"

	"github.com/studyhall-app/studyhall/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op for transactions; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx starts

func (t *txStore) Tenants() store.Tenants           { return &tenantsRepo{db: t.tx} }
func (t *txStore) Subjects() store.Subjects         { return &subjectsRepo{db: t.tx} }
func (t *txStore) TenantUsers() store.TenantUsers   { return &tenantUsersRepo{db: t.tx} }
func (t *txStore) SystemAdmins() store.SystemAdmins { return &systemAdminsRepo{db: t.tx} }
func (t *txStore) Assignments() store.Assignments   { return &assignmentsRepo{db: t.tx} }
func (t *txStore) ResetCodes() store.ResetCodes     { return &resetCodesRepo{db: t.tx} }
