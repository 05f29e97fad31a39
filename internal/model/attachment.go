package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Attachment records a file uploaded against a todo. FilePath is the
// object-storage key of the blob.
type Attachment struct {
	ID        string    `json:"id" db:"id"`
	TodoID    string    `json:"todo_id" db:"todo_id"`
	FileName  string    `json:"file_name" db:"file_name"`
	FilePath  string    `json:"file_path" db:"file_path"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	MimeType  string    `json:"mime_type" db:"mime_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ext returns the lower-cased file extension without the leading dot.
func (a Attachment) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(a.FileName)), ".")
}
