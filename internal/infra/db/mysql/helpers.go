package mysql

import (
	"database/sql"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

const enquiryColumns = `id, name, car_brand, car_name, phone_number, location,
       services_required, created_at, attended`

// encodeServices stores the ordered service list as a JSON array
func encodeServices(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func decodeServices(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		// legacy rows kept a comma separated list
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnquiry(row rowScanner) (*domain.Enquiry, error) {
	var e domain.Enquiry
	var services string
	if err := row.Scan(
		&e.ID, &e.Name, &e.CarBrand, &e.CarName, &e.PhoneNumber, &e.Location,
		&services, &e.CreatedAt, &e.Attended,
	); err != nil {
		return nil, err
	}
	e.ServicesRequired = decodeServices(services)
	return &e, nil
}

func scanAll(rows *sql.Rows) ([]*domain.Enquiry, error) {
	defer rows.Close()
	out := make([]*domain.Enquiry, 0)
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
