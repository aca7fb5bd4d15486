package enquiries

import (
	"regexp"
	"strings"
	"time"
)

// ID tipe untuk Enquiry, assigned by the store
type ID string

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Valid reports whether id has the shape every store assigns:
// Firestore auto ids and uuids
func (id ID) Valid() bool {
	return idPattern.MatchString(string(id))
}

// Field names accepted by partial updates
const (
	FieldAttended = "attended"
)

// Fields is a partial update payload (field name -> value)
type Fields map[string]any

// Enquiry is one customer service request as stored in the collection
type Enquiry struct {
	ID               ID        `json:"id" yaml:"id,omitempty"`
	Name             string    `json:"name" yaml:"name" validate:"required,max=200"`
	CarBrand         string    `json:"carBrand" yaml:"carBrand" validate:"max=100"`
	CarName          string    `json:"carName" yaml:"carName" validate:"max=100"`
	PhoneNumber      string    `json:"phoneNumber" yaml:"phoneNumber" validate:"required,max=40"`
	Location         string    `json:"location" yaml:"location" validate:"max=200"`
	ServicesRequired []string  `json:"servicesRequired" yaml:"servicesRequired" validate:"dive,required"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	Attended         bool      `json:"attended" yaml:"attended,omitempty"`
}

// Services renders the required services the way the table shows them
func (e *Enquiry) Services() string {
	return strings.Join(e.ServicesRequired, ", ")
}

// Cursor points at the last record of a fetched batch.
// ID breaks ties between equal CreatedAt values.
type Cursor struct {
	CreatedAt time.Time
	ID        ID
}

// CursorOf returns the cursor positioned on e
func CursorOf(e *Enquiry) Cursor {
	return Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
}

// Before reports whether e sorts strictly after the cursor in
// createdAt desc, id desc order, i.e. whether e belongs to a later page.
func (c Cursor) Before(e *Enquiry) bool {
	if e.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return e.CreatedAt.Equal(c.CreatedAt) && e.ID < c.ID
}
