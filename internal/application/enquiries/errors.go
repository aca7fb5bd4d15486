package enquiries

import "errors"

// ErrInvalidEnquiry is returned by Create when validation fails
var ErrInvalidEnquiry = errors.New("invalid enquiry")
