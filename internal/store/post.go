package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/studhue/apiserver/types"
)

// PostRepository handles persistence for posts, their product extension,
// and product variations. Multi-table writes run in a single transaction
// so a mid-sequence failure never leaves partial records.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Get(ctx context.Context, id string) (types.Post, error) {
	const query = `
		SELECT post_id, user_id, caption, post_type, post_date
		FROM posts
		WHERE post_id = $1`
	var post types.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.UserID,
		&post.Caption,
		&post.Type,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) GetProductByPostID(ctx context.Context, postID string) (types.Product, error) {
	const query = `
		SELECT product_id, post_id, user_id, product_name, details, stock_quantity, price
		FROM products
		WHERE post_id = $1`
	var product types.Product
	err := r.db.QueryRowContext(ctx, query, postID).Scan(
		&product.ID,
		&product.PostID,
		&product.UserID,
		&product.Name,
		&product.Details,
		&product.StockQuantity,
		&product.Price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrProductNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

func (r *PostRepository) ListVariations(ctx context.Context, productID string) ([]types.Variation, error) {
	const query = `
		SELECT variation_id, product_id, variation_name
		FROM product_variations
		WHERE product_id = $1
		ORDER BY variation_name`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variations []types.Variation
	for rows.Next() {
		var v types.Variation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name); err != nil {
			return nil, err
		}
		variations = append(variations, v)
	}
	return variations, rows.Err()
}

// Create inserts the post and, for product posts, the product row and its
// variations as one unit of work.
func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Post{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const postQuery = `
		INSERT INTO posts (post_id, user_id, caption, post_type, post_date)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, postQuery, post.ID, post.UserID, post.Caption, post.Type, post.CreatedAt); err != nil {
		return types.Post{}, conflictOr(err)
	}

	if post.Product != nil {
		product := post.Product
		const productQuery = `
			INSERT INTO products (product_id, post_id, user_id, product_name, details, stock_quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(
			ctx,
			productQuery,
			product.ID,
			post.ID,
			post.UserID,
			product.Name,
			product.Details,
			product.StockQuantity,
			product.Price,
		); err != nil {
			return types.Post{}, conflictOr(err)
		}

		const variationQuery = `
			INSERT INTO product_variations (variation_id, product_id, variation_name)
			VALUES ($1, $2, $3)`
		for _, v := range product.Variations {
			if _, err := tx.ExecContext(ctx, variationQuery, v.ID, product.ID, v.Name); err != nil {
				return types.Post{}, conflictOr(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Update replaces the post's caption and, when product is non-nil, the
// full product row, in one unit of work. Variations are not touched.
func (r *PostRepository) Update(ctx context.Context, post types.Post, product *types.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const postQuery = `UPDATE posts SET caption = $1 WHERE post_id = $2`
	result, err := tx.ExecContext(ctx, postQuery, post.Caption, post.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if product != nil {
		const productQuery = `
			UPDATE products
			SET product_name = $1,
				details = $2,
				stock_quantity = $3,
				price = $4
			WHERE post_id = $5`
		result, err := tx.ExecContext(
			ctx,
			productQuery,
			product.Name,
			product.Details,
			product.StockQuantity,
			product.Price,
			post.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrProductNotFound
		}
	}

	return tx.Commit()
}

// Delete removes the post together with every row that references it:
// pins on any board and, for product posts, the variations and product
// row. Child-to-parent order respects referential integrity; the
// transaction makes the cascade all-or-nothing.
func (r *PostRepository) Delete(ctx context.Context, id string, productTyped bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const pinsQuery = `DELETE FROM pinboard_posts WHERE post_id = $1`
	if _, err := tx.ExecContext(ctx, pinsQuery, id); err != nil {
		return err
	}

	if productTyped {
		const variationsQuery = `
			DELETE FROM product_variations
			WHERE product_id = (SELECT product_id FROM products WHERE post_id = $1)`
		if _, err := tx.ExecContext(ctx, variationsQuery, id); err != nil {
			return err
		}

		const productQuery = `DELETE FROM products WHERE post_id = $1`
		if _, err := tx.ExecContext(ctx, productQuery, id); err != nil {
			return err
		}
	}

	const postQuery = `DELETE FROM posts WHERE post_id = $1`
	result, err := tx.ExecContext(ctx, postQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListWithAuthors returns every post joined with its author's public
// display fields, newest first.
func (r *PostRepository) ListWithAuthors(ctx context.Context) ([]types.FeedPost, error) {
	const query = `
		SELECT p.post_id, p.user_id, p.caption, p.post_type, p.post_date, u.username, u.profile_picture
		FROM posts p
		JOIN users u ON p.user_id = u.user_id
		ORDER BY p.post_date DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feed := make([]types.FeedPost, 0)
	for rows.Next() {
		var item types.FeedPost
		if err := rows.Scan(
			&item.PostID,
			&item.UserID,
			&item.Caption,
			&item.Type,
			&item.CreatedAt,
			&item.Username,
			&item.ProfilePicture,
		); err != nil {
			return nil, err
		}
		feed = append(feed, item)
	}
	return feed, rows.Err()
}
