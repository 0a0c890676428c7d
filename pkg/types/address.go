package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a shipping address stored as a JSON column.
type Address struct {
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required,iso3166_1_alpha2"`
}

func (a Address) IsZero() bool {
	return a.Line1 == "" && a.City == "" && a.PostalCode == "" && a.Country == ""
}

// Oneline renders the address for display and payment provider metadata.
func (a Address) Oneline() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*a = Address{}
		return nil
	}
	return json.Unmarshal(raw, a)
}
