package model

import "time"

// Subtask is a checklist entry within a todo.
// Its lifecycle is bound to the parent todo.
type Subtask struct {
	ID        string    `json:"id" db:"id"`
	TodoID    string    `json:"todo_id" db:"todo_id"`
	Title     string    `json:"title" db:"title"`
	Completed bool      `json:"completed" db:"completed"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
