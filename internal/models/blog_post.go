package models

import (
	"time"

	"github.com/google/uuid"
)

// Blog post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusRemoved   = "removed"
)

type BlogPost struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
