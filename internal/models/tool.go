package models

import (
	"time"

	"github.com/google/uuid"
)

type Tool struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	SubmittedBy uuid.UUID `json:"submitted_by"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
