package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/studhue/apiserver/types"
)

// PinboardRepository handles persistence for pinboards and pins.
type PinboardRepository struct {
	db *sql.DB
}

func NewPinboardRepository(db *sql.DB) *PinboardRepository {
	return &PinboardRepository{db: db}
}

func (r *PinboardRepository) Create(ctx context.Context, board types.Pinboard) (types.Pinboard, error) {
	if board.CreatedAt.IsZero() {
		board.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO pinboards (board_id, user_id, board_name, board_description, board_date_creation)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, board.ID, board.UserID, board.Name, board.Description, board.CreatedAt)
	if err != nil {
		return types.Pinboard{}, conflictOr(err)
	}
	return board, nil
}

func (r *PinboardRepository) ListByUser(ctx context.Context, userID string) ([]types.Pinboard, error) {
	const query = `
		SELECT board_id, user_id, board_name, board_description, board_date_creation
		FROM pinboards
		WHERE user_id = $1
		ORDER BY board_date_creation DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := make([]types.Pinboard, 0)
	for rows.Next() {
		var board types.Pinboard
		if err := rows.Scan(&board.ID, &board.UserID, &board.Name, &board.Description, &board.CreatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

// Pin inserts a board/post pair. A duplicate pair yields ErrConflict.
func (r *PinboardRepository) Pin(ctx context.Context, boardID, postID string) error {
	const query = `
		INSERT INTO pinboard_posts (board_id, post_id)
		VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, query, boardID, postID)
	return conflictOr(err)
}

// Unpin removes a board/post pair. Removing a pair that does not exist
// is a no-op, not an error.
func (r *PinboardRepository) Unpin(ctx context.Context, boardID, postID string) error {
	const query = `
		DELETE FROM pinboard_posts
		WHERE board_id = $1 AND post_id = $2`
	_, err := r.db.ExecContext(ctx, query, boardID, postID)
	return err
}
