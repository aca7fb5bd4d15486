// Package firestore stores enquiries in a Cloud Firestore collection.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

const countAlias = "all"

// Connect opens a client. FIRESTORE_EMULATOR_HOST is honored by the SDK.
func Connect(ctx context.Context, projectID, credentialsFile, apiKey string) (*fs.Client, error) {
	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return fs.NewClient(ctx, projectID, opts...)
}

// document is the stored shape of an enquiry
type document struct {
	Name             string    `firestore:"name"`
	CarBrand         string    `firestore:"carBrand"`
	CarName          string    `firestore:"carName"`
	PhoneNumber      string    `firestore:"phoneNumber"`
	Location         string    `firestore:"location"`
	ServicesRequired []string  `firestore:"servicesRequired"`
	CreatedAt        time.Time `firestore:"createdAt"`
	Attended         bool      `firestore:"attended,omitempty"`
}

type EnquiryRepository struct {
	client     *fs.Client
	collection string
}

func NewEnquiryRepository(client *fs.Client, collection string) *EnquiryRepository {
	return &EnquiryRepository{client: client, collection: collection}
}

func (r *EnquiryRepository) coll() *fs.CollectionRef {
	return r.client.Collection(r.collection)
}

// Query orders by createdAt desc with the document id as tie-breaker
func (r *EnquiryRepository) Query(ctx context.Context, opts domain.QueryOptions) ([]*domain.Enquiry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	q := r.coll().
		OrderBy("createdAt", fs.Desc).
		OrderBy(fs.DocumentID, fs.Desc).
		Limit(limit)
	if opts.After != nil {
		q = q.StartAfter(opts.After.CreatedAt, string(opts.After.ID))
	}

	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.collection, err)
	}
	out := make([]*domain.Enquiry, 0, len(snaps))
	for _, snap := range snaps {
		e, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Count runs a server-side count aggregation over the whole collection
func (r *EnquiryRepository) Count(ctx context.Context) (int64, error) {
	res, err := r.coll().NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.collection, err)
	}
	v, ok := res[countAlias]
	if !ok {
		return 0, errors.New("count aggregation returned no value")
	}
	pv, ok := v.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count value %T", v)
	}
	return pv.GetIntegerValue(), nil
}

func (r *EnquiryRepository) Get(ctx context.Context, id domain.ID) (*domain.Enquiry, error) {
	snap, err := r.coll().Doc(string(id)).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return fromSnapshot(snap)
}

// Create lets Firestore assign the document id
func (r *EnquiryRepository) Create(ctx context.Context, e *domain.Enquiry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	ref := r.coll().NewDoc()
	if _, err := ref.Create(ctx, toDocument(e)); err != nil {
		return fmt.Errorf("creating enquiry: %w", err)
	}
	e.ID = domain.ID(ref.ID)
	return nil
}

// Update applies a partial update; the document must exist
func (r *EnquiryRepository) Update(ctx context.Context, id domain.ID, fields domain.Fields) error {
	if err := domain.ValidateFields(fields); err != nil {
		return err
	}
	updates := make([]fs.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, fs.Update{Path: k, Value: v})
	}
	if _, err := r.coll().Doc(string(id)).Update(ctx, updates); err != nil {
		return mapErr(err)
	}
	return nil
}

// Delete fails with ErrNotFound instead of silently succeeding on a missing doc
func (r *EnquiryRepository) Delete(ctx context.Context, id domain.ID) error {
	if _, err := r.coll().Doc(string(id)).Delete(ctx, fs.Exists); err != nil {
		return mapErr(err)
	}
	return nil
}

// Ping reads a single document to check connectivity
func (r *EnquiryRepository) Ping(ctx context.Context) error {
	it := r.coll().Limit(1).Documents(ctx)
	defer it.Stop()
	_, err := it.GetAll()
	return err
}

func fromSnapshot(snap *fs.DocumentSnapshot) (*domain.Enquiry, error) {
	var d document
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decoding enquiry %s: %w", snap.Ref.ID, err)
	}
	return &domain.Enquiry{
		ID:               domain.ID(snap.Ref.ID),
		Name:             d.Name,
		CarBrand:         d.CarBrand,
		CarName:          d.CarName,
		PhoneNumber:      d.PhoneNumber,
		Location:         d.Location,
		ServicesRequired: d.ServicesRequired,
		CreatedAt:        d.CreatedAt,
		Attended:         d.Attended,
	}, nil
}

func toDocument(e *domain.Enquiry) document {
	return document{
		Name:             e.Name,
		CarBrand:         e.CarBrand,
		CarName:          e.CarName,
		PhoneNumber:      e.PhoneNumber,
		Location:         e.Location,
		ServicesRequired: e.ServicesRequired,
		CreatedAt:        e.CreatedAt,
		Attended:         e.Attended,
	}
}

func mapErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
