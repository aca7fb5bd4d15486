package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
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
  id                VARCHAR(64)  NOT NULL PRIMARY KEY,
  name              VARCHAR(200) NOT NULL,
  car_brand         VARCHAR(100) NOT NULL DEFAULT '',
  car_name          VARCHAR(100) NOT NULL DEFAULT '',
  phone_number      VARCHAR(40)  NOT NULL,
  location          VARCHAR(200) NOT NULL DEFAULT '',
  services_required TEXT         NOT NULL,
  created_at        DATETIME(6)  NOT NULL,
  attended          BOOLEAN      NOT NULL DEFAULT FALSE,
  KEY idx_enquiries_created (created_at, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	_, err := db.ExecContext(ctx, q)
	return err
}
