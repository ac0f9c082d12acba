package models

import (
	"time"
)

// Task is a work item in a list. Sibling set: tasks sharing the list.
type Task struct {
	ID        string    `json:"id" db:"id"`
	ListID    string    `json:"list_id" db:"list_id"`
	Title     string    `json:"title" db:"title"`
	Order     int       `json:"order" db:"sort_order"`
	IsDeleted bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TaskFieldValue is the value of one template field on one task.
// One record per (task, field) pair.
type TaskFieldValue struct {
	TaskID    string    `json:"task_id" db:"task_id"`
	FieldID   string    `json:"field_id" db:"field_id"`
	Value     any       `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
