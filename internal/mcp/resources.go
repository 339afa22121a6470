// ABOUTME: MCP resource implementations for healhub dashboards.
// ABOUTME: Provides today's summary, pending reminders, and an overall summary.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/report"
)

const (
	uriToday     = "healhub://today"
	uriReminders = "healhub://reminders"
	uriSummary   = "healhub://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriToday,
		Name:        "Today",
		Description: "Today's tracker totals, medicine stats, pending reminders, and upcoming appointments",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriReminders,
		Name:        "Pending Reminders",
		Description: "Reminders that are neither taken nor skipped",
		MIMEType:    "application/json",
	}, s.handleRemindersResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriSummary,
		Name:        "Health Summary",
		Description: "Collection counts, latest readings per tracker, and earned badges",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summary := report.Today(report.Inputs{
		Trackers:     s.store.Trackers().All(),
		Medicines:    s.store.Medicines().All(),
		Reminders:    s.store.ListReminders(),
		Appointments: s.store.Appointments().All(),
	}, s.now(), s.loc)

	return jsonResource(uriToday, summary)
}

func (s *Server) handleRemindersResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	type pendingReminder struct {
		models.Reminder
		Medicine string `json:"medicine,omitempty"`
	}

	pending := []pendingReminder{}
	for _, r := range s.store.ListReminders() {
		if !r.Pending() {
			continue
		}
		p := pendingReminder{Reminder: r}
		if m, ok := s.store.LookupMedicine(r.MedicineID); ok {
			p.Medicine = m.Label()
		}
		pending = append(pending, p)
	}

	return jsonResource(uriReminders, map[string]any{
		"generated_at": s.now().Format(time.RFC3339),
		"count":        len(pending),
		"reminders":    pending,
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest := make(map[string]any)
	for _, t := range models.AllTrackerTypes {
		entries := s.store.TrackersByType(t)
		if len(entries) == 0 {
			continue
		}
		newest := entries[0]
		for _, e := range entries[1:] {
			if e.Date.After(newest.Date) {
				newest = e
			}
		}
		latest[string(t)] = map[string]any{
			"value":       newest.Value,
			"unit":        newest.Unit,
			"recorded_at": newest.Date.Format(time.RFC3339),
			"notes":       newest.Notes,
		}
	}

	badges := []string{}
	for _, b := range s.store.Badges().All() {
		badges = append(badges, b.Name)
	}

	return jsonResource(uriSummary, map[string]any{
		"generated_at": s.now().Format(time.RFC3339),
		"counts":       s.store.Counts(),
		"medicines":    report.Medicines(s.store.Medicines().All()),
		"latest":       latest,
		"badges":       badges,
		"theme":        s.store.Theme().Get(),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
