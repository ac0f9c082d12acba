package models

import (
	"time"
)

// Space is a top-level grouping inside a workspace. Order is the
// 1-based position among active spaces of the same workspace.
type Space struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	Order       int       `json:"order" db:"sort_order"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	IsPrivate   bool      `json:"is_private" db:"is_private"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Folder groups lists inside a space. Sibling set: folders sharing the
// same space.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	SpaceID   string    `json:"space_id" db:"space_id"`
	Name      string    `json:"name" db:"name"`
	Order     int       `json:"order" db:"sort_order"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IsPrivate bool      `json:"is_private" db:"is_private"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// List holds tasks. FolderID nil means the list hangs directly off the
// space; exactly one of the two parent shapes determines the sibling
// set the list is ordered in.
type List struct {
	ID        string    `json:"id" db:"id"`
	SpaceID   string    `json:"space_id" db:"space_id"`
	FolderID  *string   `json:"folder_id,omitempty" db:"folder_id"`
	Name      string    `json:"name" db:"name"`
	Order     int       `json:"order" db:"sort_order"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IsPrivate bool      `json:"is_private" db:"is_private"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
