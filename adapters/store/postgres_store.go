package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"github.com/ethos-labs/ethos-auth/adapters/store/migrations"
	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/ports"
)

// DBTX is the subset of *sql.DB the Postgres store needs. It lets tests
// substitute a mock connection.
type DBTX interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is a Postgres implementation of the WalletStore interface.
// Rotation atomicity comes from a conditional UPDATE keyed on the observed
// nonce: two racing rotations hit the same row and exactly one matches.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a new Postgres-backed store.
func NewPostgresStore(db DBTX) ports.WalletStore {
	return &PostgresStore{db: db}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

const walletColumns = "id, address, nonce, created_at, updated_at"

func (s *PostgresStore) scanWallet(row *sql.Row) (*core.WalletIdentity, error) {
	w := &core.WalletIdentity{}
	err := row.Scan(&w.ID, &w.Address, &w.Nonce, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// FindByAddress returns the identity for an address.
func (s *PostgresStore) FindByAddress(ctx context.Context, address string) (*core.WalletIdentity, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE address = $1`

	w, err := s.scanWallet(s.db.QueryRowContext(ctx, query, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrWalletNotFound
		}
		return nil, fmt.Errorf("%w: find wallet: %v", core.ErrStoreUnavailable, err)
	}

	return w, nil
}

// Create inserts a new identity with a fresh nonce.
func (s *PostgresStore) Create(ctx context.Context, address string) (*core.WalletIdentity, error) {
	query := `INSERT INTO wallets (id, address, nonce) VALUES ($1, $2, $3) RETURNING ` + walletColumns

	w, err := s.scanWallet(s.db.QueryRowContext(ctx, query, core.NewID(), address, core.NewNonce()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, core.ErrWalletExists
		}
		return nil, fmt.Errorf("%w: create wallet: %v", core.ErrStoreUnavailable, err)
	}

	return w, nil
}

// GetOrCreate fetches the identity for an address, creating it on first
// contact. A lost create race falls back to re-fetching the winner's row.
func (s *PostgresStore) GetOrCreate(ctx context.Context, address string) (*core.WalletIdentity, error) {
	w, err := s.FindByAddress(ctx, address)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, core.ErrWalletNotFound) {
		return nil, err
	}

	w, err = s.Create(ctx, address)
	if errors.Is(err, core.ErrWalletExists) {
		return s.FindByAddress(ctx, address)
	}
	return w, err
}

// RotateNonce replaces the nonce, compare-and-set keyed on currentNonce.
// The WHERE clause on (address, nonce) makes the swap atomic: a concurrent
// rotation that committed first leaves no matching row here.
func (s *PostgresStore) RotateNonce(ctx context.Context, address, currentNonce string) (*core.WalletIdentity, error) {
	query := `UPDATE wallets SET nonce = $3, updated_at = now()
		 WHERE address = $1 AND nonce = $2
		 RETURNING ` + walletColumns

	w, err := s.scanWallet(s.db.QueryRowContext(ctx, query, address, currentNonce, core.NewNonce()))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rotate nonce: %v", core.ErrStoreUnavailable, err)
	}

	// No row matched: either the wallet is gone or the nonce was already
	// rotated out from under us.
	if _, findErr := s.FindByAddress(ctx, address); findErr != nil {
		return nil, findErr
	}
	return nil, core.ErrNonceConflict
}
