// ABOUTME: CSV rendering of exported rows.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

// CSV renders rows with a header line. The header is columns when given,
// otherwise every key seen across rows in first-seen order, so an optional
// field missing from the first row still gets a column. Zero rows render
// as "".
func CSV(rows []Row, columns []string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if len(columns) == 0 {
		columns = headerOf(rows)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(columns))
	for _, r := range rows {
		for i, c := range columns {
			record[i] = r.Get(c)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func headerOf(rows []Row) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range rows {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Collection renders a named collection as CSV, or as an empty JSON
// wrapper when it has no rows.
func Collection(name string, items any, columns []string) (data string, contentType string, err error) {
	rows, err := RowsOf(items)
	if err != nil {
		return "", "", err
	}
	if len(rows) == 0 {
		wrapper, err := json.Marshal(map[string][]any{name: {}})
		if err != nil {
			return "", "", err
		}
		return string(wrapper), ContentTypeJSON, nil
	}
	out, err := CSV(rows, columns)
	if err != nil {
		return "", "", err
	}
	return out, ContentTypeCSV, nil
}

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)
