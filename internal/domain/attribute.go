package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
)

// Attribute is an optional, string-typed product attribute.
//
// Decoding only produces a present attribute when the source value is a
// string. Numbers, booleans, objects and null all decode to an absent
// attribute, so a numeric 5 never compares equal to the string "5".
type Attribute struct {
	value string
	valid bool
}

// Text returns a present attribute holding s.
func Text(s string) Attribute {
	return Attribute{value: s, valid: true}
}

// Get returns the string value and whether it is present.
func (a Attribute) Get() (string, bool) {
	return a.value, a.valid
}

// IsSet reports whether the attribute holds a string value.
func (a Attribute) IsSet() bool {
	return a.valid
}

// String returns the value, or "" when absent.
func (a Attribute) String() string {
	return a.value
}

// Matches reports whether both attributes are present and exactly equal.
// Comparison is case-sensitive with no normalization.
func (a Attribute) Matches(other Attribute) bool {
	return a.valid && other.valid && a.value == other.value
}

// MarshalJSON encodes an absent attribute as null.
func (a Attribute) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON accepts any JSON value but keeps only strings.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	*a = Attribute{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*a = Text(s)
	return nil
}

// Value implements driver.Valuer; absent attributes are stored as NULL.
func (a Attribute) Value() (driver.Value, error) {
	if !a.valid {
		return nil, nil
	}
	return a.value, nil
}

// Scan implements sql.Scanner.
func (a *Attribute) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*a = Text(v)
	case []byte:
		*a = Text(string(v))
	default:
		*a = Attribute{}
	}
	return nil
}
