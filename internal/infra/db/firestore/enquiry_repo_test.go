package firestore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

func TestMapErr(t *testing.T) {
	nf := mapErr(status.Error(codes.NotFound, "no such document"))
	assert.ErrorIs(t, nf, domain.ErrNotFound)

	denied := status.Error(codes.PermissionDenied, "permission-denied")
	assert.Equal(t, denied, mapErr(denied))
	assert.False(t, errors.Is(mapErr(denied), domain.ErrNotFound))
}

func TestToDocumentCopiesFields(t *testing.T) {
	at := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	e := &domain.Enquiry{
		ID:               "ignored",
		Name:             "Asha",
		CarBrand:         "Toyota",
		CarName:          "Corolla",
		PhoneNumber:      "+6281",
		Location:         "Bandung",
		ServicesRequired: []string{"Oil change"},
		CreatedAt:        at,
		Attended:         true,
	}
	d := toDocument(e)
	assert.Equal(t, "Asha", d.Name)
	assert.Equal(t, "Corolla", d.CarName)
	assert.Equal(t, []string{"Oil change"}, d.ServicesRequired)
	assert.True(t, d.CreatedAt.Equal(at))
	assert.True(t, d.Attended)
}
