// ABOUTME: Settings and Theme singletons.
// ABOUTME: Unknown settings keys survive a decode/encode round trip.
package models

import (
	"encoding/json"
	"fmt"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme. Unknown values toggle to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is light or dark.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// ParseTheme converts user input to a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid theme %q (want light or dark)", s)
	}
	return t, nil
}

// Settings holds user preferences.
type Settings struct {
	NotificationsEnabled bool  `json:"notificationsEnabled"`
	Theme                Theme `json:"theme"`
	ReminderLeadMinutes  int   `json:"reminderLeadMinutes,omitempty"`

	// Extra keeps keys this version does not know about.
	Extra map[string]json.RawMessage `json:"-"`
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{NotificationsEnabled: true, Theme: ThemeLight}
}

var knownSettingsKeys = map[string]bool{
	"notificationsEnabled": true,
	"theme":                true,
	"reminderLeadMinutes":  true,
}

// UnmarshalJSON decodes on top of the defaults so missing fields keep them.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	p := plain(DefaultSettings())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if knownSettingsKeys[k] {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = v
	}

	*s = Settings(p)
	return nil
}

// MarshalJSON writes known fields plus any preserved extras.
func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+3)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["notificationsEnabled"] = s.NotificationsEnabled
	out["theme"] = s.Theme
	if s.ReminderLeadMinutes != 0 {
		out["reminderLeadMinutes"] = s.ReminderLeadMinutes
	}
	return json.Marshal(out)
}
