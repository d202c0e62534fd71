package models

import "github.com/google/uuid"

// DetailsKind discriminates the action-specific payload attached to an
// AuditEntry. Exactly one variant field is populated per kind.
type DetailsKind string

const (
	DetailsNone          DetailsKind = ""
	DetailsDeletedUser   DetailsKind = "deleted_user"
	DetailsCreatedUser   DetailsKind = "created_user"
	DetailsDeletedTool   DetailsKind = "deleted_tool"
	DetailsDeletedReview DetailsKind = "deleted_review"
	DetailsDeletedPost   DetailsKind = "deleted_post"
)

// DeletedUserInfo is the full point-in-time snapshot of a user captured
// before the delete executes. This is the only place the identity survives.
type DeletedUserInfo struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    string    `json:"role"`
	Blocked bool      `json:"blocked"`
	Bio     string    `json:"bio,omitempty"`
	Website string    `json:"website,omitempty"`
}

type CreatedUserInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

type DeletedToolInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	SubmittedBy uuid.UUID `json:"submitted_by"`
}

type DeletedReviewInfo struct {
	ID       uuid.UUID `json:"id"`
	ToolID   uuid.UUID `json:"tool_id"`
	AuthorID uuid.UUID `json:"author_id"`
	Rating   int       `json:"rating"`
	Body     string    `json:"body"`
}

type DeletedPostInfo struct {
	ID       uuid.UUID `json:"id"`
	AuthorID uuid.UUID `json:"author_id"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Status   string    `json:"status"`
}

// Details is a tagged union keyed by Kind. Use the constructors below so the
// kind and the populated variant cannot drift apart.
type Details struct {
	Kind          DetailsKind        `json:"kind,omitempty"`
	DeletedUser   *DeletedUserInfo   `json:"deleted_user_info,omitempty"`
	CreatedUser   *CreatedUserInfo   `json:"created_user_info,omitempty"`
	DeletedTool   *DeletedToolInfo   `json:"deleted_tool_info,omitempty"`
	DeletedReview *DeletedReviewInfo `json:"deleted_review_info,omitempty"`
	DeletedPost   *DeletedPostInfo   `json:"deleted_post_info,omitempty"`
}

func (d Details) IsZero() bool { return d.Kind == DetailsNone }

func DeletedUserDetails(info DeletedUserInfo) Details {
	return Details{Kind: DetailsDeletedUser, DeletedUser: &info}
}

func CreatedUserDetails(info CreatedUserInfo) Details {
	return Details{Kind: DetailsCreatedUser, CreatedUser: &info}
}

func DeletedToolDetails(info DeletedToolInfo) Details {
	return Details{Kind: DetailsDeletedTool, DeletedTool: &info}
}

func DeletedReviewDetails(info DeletedReviewInfo) Details {
	return Details{Kind: DetailsDeletedReview, DeletedReview: &info}
}

func DeletedPostDetails(info DeletedPostInfo) Details {
	return Details{Kind: DetailsDeletedPost, DeletedPost: &info}
}

// SnapshotName returns the display name preserved in the details payload, or
// "" when the kind carries none. Used as the last-resort fallback when the
// target no longer resolves and target_name was empty.
func (d Details) SnapshotName() string {
	switch d.Kind {
	case DetailsDeletedUser:
		if d.DeletedUser != nil {
			return d.DeletedUser.Name
		}
	case DetailsCreatedUser:
		if d.CreatedUser != nil {
			return d.CreatedUser.Name
		}
	case DetailsDeletedTool:
		if d.DeletedTool != nil {
			return d.DeletedTool.Name
		}
	case DetailsDeletedPost:
		if d.DeletedPost != nil {
			return d.DeletedPost.Title
		}
	}
	return ""
}
