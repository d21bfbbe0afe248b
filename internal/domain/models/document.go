package models

import (
	"time"
)

// Document holds the extracted text of an uploaded file, scoped to a project.
// Extraction (PDF, plain text) happens before the content reaches this
// service; documents are read-only inputs to the chat context.
type Document struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Filename  string    `json:"filename" db:"filename"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DocumentInfo is the listing view of a document: metadata without content.
type DocumentInfo struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}
