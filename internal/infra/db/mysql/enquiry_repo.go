package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

type EnquiryRepository struct {
	db *sql.DB
}

func NewEnquiryRepository(db *sql.DB) *EnquiryRepository {
	return &EnquiryRepository{db: db}
}

// Query newest first; with a cursor it continues after (created_at, id)
func (r *EnquiryRepository) Query(ctx context.Context, opts domain.QueryOptions) ([]*domain.Enquiry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if opts.After == nil {
		const q = `
SELECT ` + enquiryColumns + `
FROM enquiries
ORDER BY created_at DESC, id DESC
LIMIT ?;`
		rows, err = r.db.QueryContext(ctx, q, limit)
	} else {
		const q = `
SELECT ` + enquiryColumns + `
FROM enquiries
WHERE (created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?;`
		c := opts.After
		rows, err = r.db.QueryContext(ctx, q, c.CreatedAt, c.CreatedAt, c.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying enquiries: %w", err)
	}
	return scanAll(rows)
}

// Count seluruh koleksi
func (r *EnquiryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enquiries;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting enquiries: %w", err)
	}
	return n, nil
}

func (r *EnquiryRepository) Get(ctx context.Context, id domain.ID) (*domain.Enquiry, error) {
	const q = `SELECT ` + enquiryColumns + ` FROM enquiries WHERE id=? LIMIT 1;`
	e, err := scanEnquiry(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return e, err
}

func (r *EnquiryRepository) Create(ctx context.Context, e *domain.Enquiry) error {
	const q = `
INSERT INTO enquiries
(id, name, car_brand, car_name, phone_number, location, services_required, created_at, attended)
VALUES (?,?,?,?,?,?,?,?,?);`
	id := domain.ID(uuid.New().String())
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	// column precision is microseconds; keep the cursor exact
	created = created.UTC().Truncate(time.Microsecond)
	if _, err := r.db.ExecContext(ctx, q,
		id, e.Name, e.CarBrand, e.CarName, e.PhoneNumber, e.Location,
		encodeServices(e.ServicesRequired), created, e.Attended,
	); err != nil {
		return fmt.Errorf("inserting enquiry: %w", err)
	}
	e.ID = id
	e.CreatedAt = created
	return nil
}

// Update only supports the attended flag
func (r *EnquiryRepository) Update(ctx context.Context, id domain.ID, fields domain.Fields) error {
	if err := domain.ValidateFields(fields); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE enquiries SET attended = TRUE WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("updating enquiry: %w", err)
	}
	return affected(res)
}

func (r *EnquiryRepository) Delete(ctx context.Context, id domain.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enquiries WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("deleting enquiry: %w", err)
	}
	return affected(res)
}

func (r *EnquiryRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
