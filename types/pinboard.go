package types

import "time"

// Pinboard is a user-owned collection of pinned posts.
type Pinboard struct {
	ID          string    `json:"board_ID" db:"board_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"board_name" db:"board_name"`
	Description string    `json:"board_description" db:"board_description"`
	CreatedAt   time.Time `json:"board_date_creation" db:"board_date_creation"`
}

// Pin is the many-to-many join between a pinboard and a post,
// unique per pair.
type Pin struct {
	BoardID string `json:"board_ID" db:"board_id"`
	PostID  string `json:"post_ID" db:"post_id"`
}
