package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity sources
const (
	SourceAudit  = "audit"
	SourceLegacy = "legacy"
)

// IdentityView is the current, live-resolved identity of an actor or target.
// When the entity no longer exists, Exists is false and the fields carry the
// write-time snapshot instead.
type IdentityView struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	Exists bool      `json:"exists"`
}

// OriginalNames preserves the snapshot identity for "renamed since"
// indicators, independent of whatever the live lookup returned.
type OriginalNames struct {
	PerformerName string `json:"performer_name"`
	TargetName    string `json:"target_name"`
}

// ActionSummary is the per-action rendered details block. Description is
// always set; the other fields depend on the action.
type ActionSummary struct {
	Description    string   `json:"description"`
	FromRole       string   `json:"from_role,omitempty"`
	ToRole         string   `json:"to_role,omitempty"`
	PreviousStatus string   `json:"previous_status,omitempty"`
	NewStatus      string   `json:"new_status,omitempty"`
	FieldCount     int      `json:"field_count,omitempty"`
	Fields         []string `json:"fields,omitempty"`
	DeletedName    string   `json:"deleted_name,omitempty"`
	DeletedEmail   string   `json:"deleted_email,omitempty"`
	DeletedRole    string   `json:"deleted_role,omitempty"`
}

// ActivityView is the query-time merge of an audit or legacy record with
// current identity resolution. It is rebuilt on every history query and
// never persisted.
type ActivityView struct {
	ID            string          `json:"id"`
	Source        string          `json:"source"`
	Category      string          `json:"category"`
	Action        string          `json:"action"`
	Performer     IdentityView    `json:"performer"`
	Target        IdentityView    `json:"target"`
	TargetType    string          `json:"target_type"`
	OriginalNames OriginalNames   `json:"original_names"`
	Changes       []Change        `json:"changes,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Summary       ActionSummary   `json:"summary"`
	Metadata      RequestMetadata `json:"metadata"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ActivityStats aggregates the filtered (untruncated) result set.
type ActivityStats struct {
	Total       int            `json:"total"`
	ByAction    map[string]int `json:"by_action"`
	ByPerformer map[string]int `json:"by_performer"`
}

// ActivityFeed is the full payload of a history query.
type ActivityFeed struct {
	Entries []ActivityView `json:"entries"`
	Staff   []StaffMember  `json:"staff"`
	Stats   ActivityStats  `json:"stats"`
}
