package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the record document in PostgreSQL while honoring the
// same whole-document Load/Save contract as the file backend: Save replaces
// every row in one transaction.
type PostgresStore struct {
	mu sync.Mutex
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed record store, creating the
// backing tables when absent.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	const schema = `
        CREATE TABLE IF NOT EXISTS users (
            id BIGINT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL,
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS applications (
            id BIGINT PRIMARY KEY,
            user_id BIGINT NOT NULL,
            name TEXT NOT NULL,
            phone TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            loan_amount DOUBLE PRECISION NOT NULL,
            purpose TEXT NOT NULL DEFAULT '',
            monthly_income DOUBLE PRECISION,
            created_at TIMESTAMPTZ NOT NULL
        );`
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure record tables: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Load reads every user and application row.
func (p *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Users: []User{}, Applications: []Application{}}

	rows, err := p.db.Query(ctx, `SELECT id, name, phone, email, password_hash, created_at
        FROM users ORDER BY id`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		snap.Users = append(snap.Users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load users: %w", err)
	}

	rows, err = p.db.Query(ctx, `SELECT id, user_id, name, phone, email, address,
        loan_amount, purpose, monthly_income, created_at FROM applications ORDER BY id`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load applications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Phone, &a.Email, &a.Address,
			&a.LoanAmount, &a.Purpose, &a.MonthlyIncome, &a.CreatedAt); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		snap.Applications = append(snap.Applications, a)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("load applications: %w", err)
	}

	return snap, nil
}

// Save replaces the full row set for both collections in one transaction.
func (p *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM applications`); err != nil {
		return fmt.Errorf("clear applications: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	for _, u := range snap.Users {
		if _, err := tx.Exec(ctx, `INSERT INTO users (id, name, phone, email, password_hash, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)`,
			u.ID, u.Name, u.Phone, u.Email, u.PasswordHash, u.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("save user %d: %w", u.ID, err)
		}
	}
	for _, a := range snap.Applications {
		if _, err := tx.Exec(ctx, `INSERT INTO applications (id, user_id, name, phone, email,
            address, loan_amount, purpose, monthly_income, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID, a.UserID, a.Name, a.Phone, a.Email, a.Address,
			a.LoanAmount, a.Purpose, a.MonthlyIncome, a.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("save application %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Update applies fn under the store lock so concurrent mutations cannot
// overwrite each other's rows.
func (p *PostgresStore) Update(ctx context.Context, fn func(*Snapshot) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, err := p.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&snap); err != nil {
		return err
	}
	return p.Save(ctx, snap)
}
