package model

import "time"

// Tag is a free-form label; a todo may carry any number of tags.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TodoTag links a todo to a tag.
type TodoTag struct {
	TodoID string `json:"todo_id" db:"todo_id"`
	TagID  string `json:"tag_id" db:"tag_id"`
}
