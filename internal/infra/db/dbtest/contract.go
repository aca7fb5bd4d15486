// Package dbtest holds the behaviour every enquiry store adapter must share.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

// Factory returns an empty repository for one subtest
type Factory func(t *testing.T) domain.Repository

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

// Seed creates n enquiries one minute apart, "customer 01" being the oldest.
// step == 0 gives every record the same timestamp.
func Seed(t *testing.T, r domain.Repository, n int, step time.Duration) []*domain.Enquiry {
	t.Helper()
	out := make([]*domain.Enquiry, 0, n)
	for i := 0; i < n; i++ {
		e := &domain.Enquiry{
			Name:             fmt.Sprintf("customer %02d", i+1),
			CarBrand:         "Honda",
			CarName:          "Civic",
			PhoneNumber:      "0800",
			Location:         "Melbourne",
			ServicesRequired: []string{"Detailing", "Tint"},
			CreatedAt:        base.Add(time.Duration(i) * step),
		}
		require.NoError(t, r.Create(context.Background(), e))
		require.NotEmpty(t, e.ID)
		out = append(out, e)
	}
	return out
}

// walk pages through the whole collection and returns every id in order
func walk(t *testing.T, r domain.Repository, limit int) []*domain.Enquiry {
	t.Helper()
	var (
		all   []*domain.Enquiry
		after *domain.Cursor
	)
	for i := 0; i < 100; i++ {
		batch, err := r.Query(context.Background(), domain.QueryOptions{After: after, Limit: limit})
		require.NoError(t, err)
		require.LessOrEqual(t, len(batch), limit)
		if len(batch) == 0 {
			return all
		}
		all = append(all, batch...)
		c := domain.CursorOf(batch[len(batch)-1])
		after = &c
	}
	t.Fatal("pagination did not terminate")
	return nil
}

// Run exercises the Repository contract against fresh repositories
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("newest first with cursor", func(t *testing.T) {
		r := newRepo(t)
		Seed(t, r, 7, time.Minute)

		first, err := r.Query(ctx, domain.QueryOptions{Limit: 3})
		require.NoError(t, err)
		require.Len(t, first, 3)
		assert.Equal(t, "customer 07", first[0].Name)
		assert.Equal(t, "customer 05", first[2].Name)

		all := walk(t, r, 3)
		require.Len(t, all, 7)
		for i := 1; i < len(all); i++ {
			assert.True(t, all[i].CreatedAt.Before(all[i-1].CreatedAt), "position %d out of order", i)
		}
		assert.Equal(t, "customer 01", all[6].Name)
	})

	t.Run("equal timestamps neither overlap nor gap", func(t *testing.T) {
		r := newRepo(t)
		Seed(t, r, 5, 0)

		all := walk(t, r, 2)
		require.Len(t, all, 5)
		seen := map[domain.ID]bool{}
		for _, e := range all {
			assert.False(t, seen[e.ID])
			seen[e.ID] = true
		}
	})

	t.Run("count", func(t *testing.T) {
		r := newRepo(t)
		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		Seed(t, r, 4, time.Minute)
		n, err = r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})

	t.Run("round trip", func(t *testing.T) {
		r := newRepo(t)
		created := Seed(t, r, 1, time.Minute)[0]

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Name, got.Name)
		assert.Equal(t, "Civic", got.CarName)
		assert.Equal(t, []string{"Detailing", "Tint"}, got.ServicesRequired)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
		assert.False(t, got.Attended)
	})

	t.Run("mark attended", func(t *testing.T) {
		r := newRepo(t)
		e := Seed(t, r, 1, time.Minute)[0]

		require.NoError(t, r.Update(ctx, e.ID, domain.Fields{domain.FieldAttended: true}))
		// setting it again is not an error
		require.NoError(t, r.Update(ctx, e.ID, domain.Fields{domain.FieldAttended: true}))

		got, err := r.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.True(t, got.Attended)

		err = r.Update(ctx, e.ID, domain.Fields{"name": "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidUpdate)
	})

	t.Run("unknown id", func(t *testing.T) {
		r := newRepo(t)
		missing := domain.ID(uuid.NewString())

		_, err := r.Get(ctx, missing)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, r.Update(ctx, missing, domain.Fields{domain.FieldAttended: true}), domain.ErrNotFound)
		assert.ErrorIs(t, r.Delete(ctx, missing), domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepo(t)
		list := Seed(t, r, 2, time.Minute)

		require.NoError(t, r.Delete(ctx, list[0].ID))
		_, err := r.Get(ctx, list[0].ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		n, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
