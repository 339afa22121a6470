// ABOUTME: Flattens records into ordered string rows for tabular export.
// ABOUTME: Field order follows the JSON encoding of each record.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Field is one column of a row.
type Field struct {
	Key   string
	Value string
}

// Row is an ordered set of fields.
type Row []Field

// Get returns the value of key, or "" when absent.
func (r Row) Get(key string) string {
	for _, f := range r {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Keys returns the field names in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// RowsOf converts a slice of records into rows. Nested objects and arrays
// are rendered as compact JSON; null becomes an empty cell.
func RowsOf(items any) ([]Row, error) {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("rows: want a slice, got %T", items)
	}

	rows := make([]Row, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		data, err := json.Marshal(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
		row, err := rowFromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("flatten row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowFromJSON(data []byte) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("record is not an object")
	}

	var row Row
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		row = append(row, Field{Key: key, Value: cell(raw)})
	}
	return row, nil
}

func cell(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		return string(raw)
	}
}
