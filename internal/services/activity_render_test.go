package services

import (
	"strings"
	"testing"

	"github.com/tooldeck/backend/internal/models"
)

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		target   string
		changes  []models.Change
		details  models.Details
		contains []string
	}{
		{
			name:     "role change names both roles",
			action:   models.ActionRoleChanged,
			target:   "Uma",
			changes:  []models.Change{{Field: "role", OldValue: "user", NewValue: "writer"}},
			contains: []string{"Uma", "user", "writer"},
		},
		{
			name:     "block shows status transition",
			action:   models.ActionBlocked,
			target:   "Victor",
			contains: []string{"blocked Victor"},
		},
		{
			name:   "profile update lists fields",
			action: models.ActionProfileUpdated,
			target: "Wanda",
			changes: []models.Change{
				{Field: "name", OldValue: "W", NewValue: "Wanda"},
				{Field: "bio", OldValue: "", NewValue: "hi"},
			},
			contains: []string{"2 field(s)", "name, bio"},
		},
		{
			name:    "account deletion prefers the snapshot",
			action:  models.ActionAccountDeleted,
			target:  "",
			details: models.DeletedUserDetails(models.DeletedUserInfo{Name: "Dana", Email: "dana@example.com"}),
			contains: []string{"Dana", "dana@example.com"},
		},
		{
			name:     "unknown action still renders",
			action:   "mystery_action",
			target:   "Thing",
			contains: []string{"mystery_action", "Thing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := renderSummary(tt.action, tt.target, tt.changes, tt.details)
			for _, want := range tt.contains {
				if !strings.Contains(summary.Description, want) {
					t.Errorf("description %q missing %q", summary.Description, want)
				}
			}
		})
	}
}

func TestRenderSummaryFieldDetails(t *testing.T) {
	summary := renderSummary(models.ActionRoleChanged, "Uma",
		[]models.Change{{Field: "role", OldValue: "user", NewValue: "writer"}}, models.Details{})
	if summary.FromRole != "user" || summary.ToRole != "writer" {
		t.Errorf("roles = %q -> %q", summary.FromRole, summary.ToRole)
	}

	summary = renderSummary(models.ActionBlocked, "Victor", nil, models.Details{})
	if summary.PreviousStatus != "active" || summary.NewStatus != "blocked" {
		t.Errorf("statuses = %q -> %q", summary.PreviousStatus, summary.NewStatus)
	}

	summary = renderSummary(models.ActionAccountDeleted, "", nil,
		models.DeletedUserDetails(models.DeletedUserInfo{Name: "Dana", Email: "dana@example.com", Role: "writer"}))
	if summary.DeletedName != "Dana" || summary.DeletedRole != "writer" {
		t.Errorf("deleted snapshot = %+v", summary)
	}
}

func TestStringifyValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"float", 3.5, "3.5"},
		{"map collapses to JSON", map[string]string{"a": "b"}, `{"a":"b"}`},
		{"slice collapses to JSON", []int{1, 2}, "[1,2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringifyValue(tt.in); got != tt.want {
				t.Errorf("stringifyValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
