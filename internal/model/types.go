package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList stores a list of entity IDs as a jsonb column.
type IDList []uint

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *IDList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = IDList{}
		return nil
	default:
		return fmt.Errorf("unsupported type for IDList: %T", value)
	}
}

// Contains reports whether id is present in the list.
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Intersects reports whether the list shares at least one ID with other.
func (l IDList) Intersects(other IDList) bool {
	for _, v := range other {
		if l.Contains(v) {
			return true
		}
	}
	return false
}

// Metadata stores free-form key/value details as a jsonb column.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = Metadata{}
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = Metadata{}
		return nil
	default:
		return fmt.Errorf("unsupported type for Metadata: %T", value)
	}
}
