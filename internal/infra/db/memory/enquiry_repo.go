// Package memory is an in-process enquiry store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

type EnquiryRepository struct {
	mu   sync.RWMutex
	docs map[domain.ID]domain.Enquiry
}

func NewEnquiryRepository() *EnquiryRepository {
	return &EnquiryRepository{docs: make(map[domain.ID]domain.Enquiry)}
}

// Query returns records ordered by createdAt desc, id desc
func (r *EnquiryRepository) Query(ctx context.Context, opts domain.QueryOptions) ([]*domain.Enquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	all := make([]domain.Enquiry, 0, len(r.docs))
	for _, e := range r.docs {
		all = append(all, e)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	out := make([]*domain.Enquiry, 0, limit)
	for i := range all {
		e := all[i]
		if opts.After != nil && !opts.After.Before(&e) {
			continue
		}
		out = append(out, clone(&e))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *EnquiryRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.docs)), nil
}

func (r *EnquiryRepository) Get(ctx context.Context, id domain.ID) (*domain.Enquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(&e), nil
}

// Create assigns a fresh id (and createdAt when zero)
func (r *EnquiryRepository) Create(ctx context.Context, e *domain.Enquiry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.ID = domain.ID(uuid.New().String())
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.docs[e.ID] = *clone(e)
	r.mu.Unlock()
	return nil
}

func (r *EnquiryRepository) Update(ctx context.Context, id domain.ID, fields domain.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateFields(fields); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Attended = true
	r.docs[id] = e
	return nil
}

func (r *EnquiryRepository) Delete(ctx context.Context, id domain.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

// Ping satisfies the health checker
func (r *EnquiryRepository) Ping(ctx context.Context) error { return ctx.Err() }

func clone(e *domain.Enquiry) *domain.Enquiry {
	c := *e
	if e.ServicesRequired != nil {
		c.ServicesRequired = append([]string(nil), e.ServicesRequired...)
	}
	return &c
}
