package salesforce

import "encoding/json"

// Record represents a generic Salesforce record returned by a query.
type Record map[string]interface{}

// StringField safely extracts a string field, returning "" if nil.
func (r Record) StringField(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// BoolField safely extracts a bool field, returning false if nil.
func (r Record) BoolField(field string) bool {
	if v, ok := r[field].(bool); ok {
		return v
	}
	return false
}

// IntField safely extracts a numeric field as an int.
func (r Record) IntField(field string) int {
	switch v := r[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// MapField safely extracts a nested object field.
func (r Record) MapField(field string) map[string]interface{} {
	if v, ok := r[field].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// NestedString navigates {section}.{field} and returns the string value.
func (r Record) NestedString(section, field string) string {
	if m := r.MapField(section); m != nil {
		if v, ok := m[field].(string); ok {
			return v
		}
	}
	return ""
}
