package enquiries

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/bryanwahyu/enquiry-console/internal/application"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
)

// Service implements use-cases untuk Enquiry.
// Archive is optional; when set, deleted enquiries are archived first.
type Service struct {
	Repo    domain.Repository
	Archive domain.Archiver
	Clock   application.Clock

	validate *validator.Validate
}

func NewService(repo domain.Repository, archive domain.Archiver, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{
		Repo:     repo,
		Archive:  archive,
		Clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

//
// ==== USE CASES ====
//

// Page ambil satu batch, newest first, starting after the cursor when given
func (s *Service) Page(ctx context.Context, after *domain.Cursor, limit int) ([]*domain.Enquiry, error) {
	return s.Repo.Query(ctx, domain.QueryOptions{After: after, Limit: limit})
}

// Count seluruh enquiry di koleksi
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Repo.Count(ctx)
}

// List builds a stateless cursor page for API clients
func (s *Service) List(ctx context.Context, after *domain.Cursor, limit int) (domain.PaginatedResult, error) {
	batch, err := s.Page(ctx, after, limit)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting page: %w", err)
	}
	total, err := s.Count(ctx)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}
	res := domain.PaginatedResult{
		Data:       batch,
		PageSize:   limit,
		Total:      total,
		TotalPages: domain.TotalPages(total, limit),
	}
	if len(batch) == limit {
		res.NextCursor = domain.CursorOf(batch[len(batch)-1]).Encode()
	}
	return res, nil
}

// Get ambil 1 enquiry by id
func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Enquiry, error) {
	return s.Repo.Get(ctx, id)
}

// MarkAttended sets attended=true; it is never unset
func (s *Service) MarkAttended(ctx context.Context, id domain.ID) error {
	return s.Repo.Update(ctx, id, domain.Fields{domain.FieldAttended: true})
}

// Delete permanently removes the enquiry. With an archive configured the
// record is archived first and a failed archive aborts the delete.
func (s *Service) Delete(ctx context.Context, id domain.ID) error {
	if s.Archive != nil {
		e, err := s.Repo.Get(ctx, id)
		if err != nil {
			return err
		}
		url, err := s.Archive.Archive(ctx, e)
		if err != nil {
			return err
		}
		logger.C(ctx).Debug().Str("enquiry_id", string(id)).Str("archive", url).Msg("enquiry archived")
	}
	return s.Repo.Delete(ctx, id)
}

// Create validates and stores a new enquiry; the store assigns the id
func (s *Service) Create(ctx context.Context, e *domain.Enquiry) error {
	if err := s.validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnquiry, err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.Clock.Now().UTC()
	}
	return s.Repo.Create(ctx, e)
}
