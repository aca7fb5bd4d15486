package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the enquiries table when missing
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const q = `
CREATE TABLE IF NOT EXISTS enquiries (
  id                TEXT        PRIMARY KEY,
  name              TEXT        NOT NULL,
  car_brand         TEXT        NOT NULL DEFAULT '',
  car_name          TEXT        NOT NULL DEFAULT '',
  phone_number      TEXT        NOT NULL,
  location          TEXT        NOT NULL DEFAULT '',
  services_required TEXT        NOT NULL DEFAULT '[]',
  created_at        TIMESTAMPTZ NOT NULL,
  attended          BOOLEAN     NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_enquiries_created ON enquiries (created_at DESC, id DESC);`
	_, err := db.ExecContext(ctx, q)
	return err
}
