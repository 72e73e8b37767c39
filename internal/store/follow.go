package store

import (
	"context"
	"database/sql"
)

// FollowRepository handles persistence for follow edges.
type FollowRepository struct {
	db *sql.DB
}

func NewFollowRepository(db *sql.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts a follow edge. A duplicate pair yields ErrConflict.
func (r *FollowRepository) Create(ctx context.Context, followerID, followingID string) error {
	const query = `
		INSERT INTO followers (follower_id, following_id)
		VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, followerID, followingID)
	return conflictOr(err)
}

// Delete removes a follow edge. Deleting an edge that does not exist is
// a no-op, not an error.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	const query = `
		DELETE FROM followers
		WHERE follower_id = $1 AND following_id = $2`
	_, err := r.db.ExecContext(ctx, query, followerID, followingID)
	return err
}
