package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit categories
const (
	CategoryUserManagement   = "user_management"
	CategoryToolManagement   = "tool_management"
	CategoryReviewManagement = "review_management"
	CategoryBlogModeration   = "blog_moderation"
)

// Audit actions
const (
	ActionRoleChanged    = "role_changed"
	ActionBlocked        = "blocked"
	ActionUnblocked      = "unblocked"
	ActionProfileUpdated = "profile_updated"
	ActionDataModified   = "data_modified"
	ActionAccountCreated = "account_created"
	ActionAccountDeleted = "account_deleted"
	ActionCreated        = "created"
	ActionUpdated        = "updated"
	ActionPublished      = "published"
	ActionUnpublished    = "unpublished"
	ActionHidden         = "hidden"
	ActionUnhidden       = "unhidden"
	ActionDeleted        = "deleted"
)

// Target types
const (
	TargetUser     = "user"
	TargetTool     = "tool"
	TargetReview   = "review"
	TargetBlogPost = "blog_post"
)

// KnownActions is the closed set accepted by the activity filter. Anything
// else coming in from the query string is treated as "no filter".
var KnownActions = map[string]bool{
	ActionRoleChanged:    true,
	ActionBlocked:        true,
	ActionUnblocked:      true,
	ActionProfileUpdated: true,
	ActionDataModified:   true,
	ActionAccountCreated: true,
	ActionAccountDeleted: true,
	ActionCreated:        true,
	ActionUpdated:        true,
	ActionPublished:      true,
	ActionUnpublished:    true,
	ActionHidden:         true,
	ActionUnhidden:       true,
	ActionDeleted:        true,
}

// ActorSnapshot is the acting staff member as they were at write time.
// Never refreshed afterwards.
type ActorSnapshot struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// Change is one field-level delta. Values are json-serializable scalars or
// objects, depending on the field.
type Change struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// RequestMetadata is captured from the HTTP request that triggered the action.
type RequestMetadata struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// AuditEntry is one row of the centralized audit store. Immutable once
// written; it must stay fully informative after the target entity is gone.
type AuditEntry struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Action      string          `json:"action"`
	PerformedBy ActorSnapshot   `json:"performed_by"`
	TargetID    uuid.UUID       `json:"target_id"`
	TargetType  string          `json:"target_type"`
	TargetName  string          `json:"target_name"`
	Changes     []Change        `json:"changes,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Details     Details         `json:"details"`
	Metadata    RequestMetadata `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LegacyLogEntry is the embedded per-entity audit record. It lives inside the
// target row's audit_log jsonb array, is capped, and dies with the entity.
type LegacyLogEntry struct {
	Action      string          `json:"action"`
	Category    string          `json:"category"`
	PerformedBy ActorSnapshot   `json:"performed_by"`
	Changes     []Change        `json:"changes,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Metadata    RequestMetadata `json:"metadata"`
	Timestamp   time.Time       `json:"timestamp"`
}

// LegacyRecord is a LegacyLogEntry read back out of a live entity, with the
// owning entity attached so it can be merged with centralized entries.
type LegacyRecord struct {
	TargetID   uuid.UUID
	TargetType string
	TargetName string
	Entry      LegacyLogEntry
}
