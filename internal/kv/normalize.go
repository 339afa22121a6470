// ABOUTME: Tracker collection normalization for legacy storage shapes.
// ABOUTME: Flattens grouped-by-type objects into the canonical flat list.
package kv

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/harperreed/healhub/internal/models"
)

// NormalizeTrackers converts a stored tracker value into a flat list.
//
// A flat array is returned in order. An object whose values are arrays
// (the older grouped-by-type layout) is flattened group by group in
// ascending key order. Falsy elements are dropped, as is any element
// that does not decode as an entry. Anything else yields an empty list.
// Normalizing an already flat list returns it unchanged.
func NormalizeTrackers(raw json.RawMessage) []models.TrackerEntry {
	raw = bytes.TrimSpace(raw)
	out := []models.TrackerEntry{}
	if len(raw) == 0 {
		return out
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return out
		}
		return appendEntries(out, items)

	case '{':
		var groups map[string]json.RawMessage
		if err := json.Unmarshal(raw, &groups); err != nil {
			return out
		}
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			var items []json.RawMessage
			if err := json.Unmarshal(groups[name], &items); err != nil {
				continue
			}
			out = appendEntries(out, items)
		}
		return out
	}

	return out
}

func appendEntries(out []models.TrackerEntry, items []json.RawMessage) []models.TrackerEntry {
	for _, item := range items {
		if isFalsy(item) {
			continue
		}
		var e models.TrackerEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func isFalsy(item json.RawMessage) bool {
	switch string(bytes.TrimSpace(item)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}
