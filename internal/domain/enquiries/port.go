package enquiries

import "context"

// QueryOptions for Repository.Query. Ordering is always createdAt desc, id desc.
type QueryOptions struct {
	After *Cursor
	Limit int
}

// Repository port (interface untuk persistence)
type Repository interface {
	Query(ctx context.Context, opts QueryOptions) ([]*Enquiry, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id ID) (*Enquiry, error)
	Create(ctx context.Context, e *Enquiry) error
	Update(ctx context.Context, id ID, fields Fields) error
	Delete(ctx context.Context, id ID) error
}

// Archiver port (penyimpanan arsip untuk enquiry yang dihapus)
type Archiver interface {
	Archive(ctx context.Context, e *Enquiry) (string, error)
}

// ValidateFields checks a partial update only touches writable fields.
// The attended flag may only ever be set to true.
func ValidateFields(fields Fields) error {
	if len(fields) == 0 {
		return ErrInvalidUpdate
	}
	for k, v := range fields {
		if k != FieldAttended {
			return ErrInvalidUpdate
		}
		if b, ok := v.(bool); !ok || !b {
			return ErrInvalidUpdate
		}
	}
	return nil
}
