package middleware

import (
	"fmt"
	"strconv"
	"strings"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

// ValidateEnquiryID accepts store ids: Firestore auto ids and uuids
func ValidateEnquiryID(id string) error {
	if id == "" {
		return fmt.Errorf("enquiry id cannot be empty")
	}
	if !domain.ID(id).Valid() {
		return fmt.Errorf("invalid enquiry id format")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(raw string, def int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}
