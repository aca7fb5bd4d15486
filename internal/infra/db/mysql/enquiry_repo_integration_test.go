//go:build integration_mysql
// +build integration_mysql

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/infra/db/dbtest"
)

func startMySQL(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)

	req := tc.ContainerRequest{
		Image:        "mysql:8.4",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_DATABASE":      "enquiries",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("3306/tcp"),
			wait.ForLog("ready for connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start mysql container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "3306/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("root:secret@tcp(%s:%s)/enquiries?parseTime=true&charset=utf8mb4&loc=UTC&clientFoundRows=true", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func TestEnquiryRepository_Integration(t *testing.T) {
	dsn, stop := startMySQL(t)
	t.Cleanup(stop)

	ctx := context.Background()
	var db *sql.DB
	// the server restarts once after init, give it a few tries
	require.Eventually(t, func() bool {
		var err error
		db, err = Connect(ctx, dsn)
		return err == nil
	}, time.Minute, 2*time.Second)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(ctx, db))

	dbtest.Run(t, func(t *testing.T) domain.Repository {
		_, err := db.Exec(`DELETE FROM enquiries;`)
		require.NoError(t, err)
		return NewEnquiryRepository(db)
	})
}
