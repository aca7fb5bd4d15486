// Package bootstrap opens the configured enquiry store and archive
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryanwahyu/enquiry-console/internal/config"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	fsrepo "github.com/bryanwahyu/enquiry-console/internal/infra/db/firestore"
	"github.com/bryanwahyu/enquiry-console/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/enquiry-console/internal/infra/db/mysql"
	"github.com/bryanwahyu/enquiry-console/internal/infra/db/postgres"
	minioStore "github.com/bryanwahyu/enquiry-console/internal/infra/storage"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
	"github.com/bryanwahyu/enquiry-console/internal/middleware"
)

// Store is a repository that can report its own reachability
type Store interface {
	domain.Repository
	Ping(ctx context.Context) error
}

// Infra holds the opened adapters; Archive is nil when MinIO is disabled
type Infra struct {
	Repo    Store
	Archive domain.Archiver
	Health  map[string]middleware.HealthChecker

	closers []func() error
}

// Close releases every opened client
func (i *Infra) Close() error {
	var errs []error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open connects the store selected by cfg.Store.Driver and, when enabled,
// the MinIO archive
func Open(ctx context.Context, cfg *config.Config) (*Infra, error) {
	log := logger.Named("bootstrap")
	inf := &Infra{Health: make(map[string]middleware.HealthChecker)}

	switch cfg.Store.Driver {
	case config.DriverFirestore:
		client, err := fsrepo.Connect(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile, cfg.Firestore.APIKey)
		if err != nil {
			return nil, fmt.Errorf("firestore connect: %w", err)
		}
		inf.closers = append(inf.closers, client.Close)
		inf.Repo = fsrepo.NewEnquiryRepository(client, cfg.Store.Collection)

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		inf.closers = append(inf.closers, db.Close)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			inf.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		inf.Repo = postgres.NewEnquiryRepository(db)

	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		inf.closers = append(inf.closers, db.Close)
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			inf.Close()
			return nil, fmt.Errorf("mysql schema: %w", err)
		}
		inf.Repo = mysqlp.NewEnquiryRepository(db)

	case config.DriverMemory:
		inf.Repo = memory.NewEnquiryRepository()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	inf.Health["store"] = middleware.PingChecker{Target: inf.Repo}
	log.Info().Str("driver", cfg.Store.Driver).Msg("enquiry store ready")

	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			inf.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		inf.Archive = store
		inf.Health["archive"] = middleware.PingChecker{Target: store}
		log.Info().Str("bucket", cfg.Minio.BucketName).Msg("archive enabled")
	}
	return inf, nil
}
