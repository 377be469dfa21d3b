package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON is a loosely typed JSON object column.
type JSON map[string]interface{}

// Value serializes the object for storage.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads the object back from storage.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	if len(data) == 0 {
		*j = nil
		return nil
	}
	return json.Unmarshal(data, j)
}

// IDList is an ordered list of user ids stored as a JSON text column.
// The referral chain uses it: root ancestor first, immediate parent last.
type IDList []uint

// Value serializes the list for storage.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan reads the list back from storage.
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported IDList column type")
	}
	if len(data) == 0 {
		*l = IDList{}
		return nil
	}
	return json.Unmarshal(data, (*[]uint)(l))
}

// Clone returns an independent copy of the list.
func (l IDList) Clone() IDList {
	if l == nil {
		return IDList{}
	}
	out := make(IDList, len(l))
	copy(out, l)
	return out
}

// Contains reports whether id is part of the list.
func (l IDList) Contains(id uint) bool {
	for _, item := range l {
		if item == id {
			return true
		}
	}
	return false
}
