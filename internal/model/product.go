package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Catalog document field names
const (
	FieldID         = "_id"
	FieldItemName   = "item_name"
	FieldBrandName  = "brand_name"
	FieldSearchTags = "search_tags"
	FieldCategory   = "category"
	FieldPrice      = "price"
	FieldIsLiquid   = "is_liquid"
	FieldWeightKg   = "weight_kg"
	FieldVolumeMl   = "volume_ml"
)

// TextFields are the document fields covered by the full-text index
var TextFields = []string{FieldSearchTags, FieldItemName, FieldBrandName}

// Document is a catalog entry as stored. Apart from its identifier, no field
// is interpreted when returning results.
type Document map[string]interface{}

// Value implements driver.Valuer interface
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cannot scan %T into Document", value)
	}
}

// Float returns a numeric field. Numbers stored as strings are accepted.
func (d Document) Float(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns a boolean field
func (d Document) Bool(key string) (bool, bool) {
	switch v := d[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// StringValue returns a string field
func (d Document) StringValue(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Text flattens a text-bearing field. search_tags may be stored as an array.
func (d Document) Text(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(v, " ")
	default:
		return ""
	}
}

// ID returns the document identifier as a plain string.
// The boolean is false when the document has no "_id".
func (d Document) ID() (string, bool) {
	return NormalizeID(d[FieldID])
}

// NormalizeID renders an identifier of any stored shape as a string:
// integers and JSON numbers, raw bytes, extended JSON {"$oid": ...} and Stringers.
func NormalizeID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, true
	case []byte:
		return string(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case int:
		return strconv.Itoa(id), true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case map[string]interface{}:
		// mongoexport extended JSON
		if oid, ok := id["$oid"].(string); ok {
			return oid, true
		}
		return fmt.Sprint(id), true
	case fmt.Stringer:
		return id.String(), true
	default:
		return fmt.Sprint(id), true
	}
}
