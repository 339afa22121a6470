// ABOUTME: Shared output and parsing helpers for CLI commands.
// ABOUTME: Colored status lines, column padding, and flexible timestamp parsing.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/healhub/internal/models"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

func success(cmd *cobra.Command, format string, args ...any) {
	_, _ = green.Fprintf(cmd.OutOrStdout(), "✓ "+format+"\n", args...)
}

func removed(cmd *cobra.Command, format string, args ...any) {
	_, _ = yellow.Fprintf(cmd.OutOrStdout(), "✗ "+format+"\n", args...)
}

func warn(cmd *cobra.Command, format string, args ...any) {
	_, _ = yellow.Fprintf(cmd.OutOrStdout(), "⚠ "+format+"\n", args...)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func printLine(cmd *cobra.Command, args ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), args...)
}

func shortID(id models.ID) string {
	return faint.Sprint(id.Short())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func notesSuffix(notes string) string {
	if notes == "" {
		return ""
	}
	return faint.Sprintf(" (%s)", truncate(notes, 30))
}

var timeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339,
}

// parseTime reads a user timestamp in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, f := range timeLayouts {
		if t, err := time.ParseInLocation(f, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseWhen accepts a bare HH:MM on today's date or any parseTime layout.
func parseWhen(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if c, err := time.ParseInLocation("15:04", s, loc); err == nil {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
	}
	return parseTime(s, loc)
}
