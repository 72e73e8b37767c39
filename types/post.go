package types

import "time"

// PostType discriminates regular posts from product-bearing posts.
// It is fixed at creation time.
type PostType string

const (
	PostTypeRegular PostType = "regular"
	PostTypeProduct PostType = "product"
)

// Post represents a feed entry owned by a user. A post of type
// PostTypeProduct carries exactly one Product; a regular post carries none.
type Post struct {
	// ID is the opaque unique identifier of the post.
	ID string `json:"post_id" db:"post_id"`

	// UserID is the identifier of the owning user. A post's owner never
	// changes after creation.
	UserID string `json:"user_id" db:"user_id"`

	// Caption is the free-text body of the post.
	Caption string `json:"caption" db:"caption"`

	// Type is the post discriminator, "regular" or "product".
	Type PostType `json:"post_type" db:"post_type"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"post_date" db:"post_date"`

	// Product is the product extension, present only for product posts.
	Product *Product `json:"product,omitempty"`
}

// Product is the 1:1 extension of a product-typed post.
type Product struct {
	// ID is the opaque unique identifier of the product.
	ID string `json:"product_id" db:"product_id"`

	// PostID is the identifier of the parent post.
	PostID string `json:"post_id" db:"post_id"`

	// UserID is the identifier of the owning user, denormalized from
	// the parent post.
	UserID string `json:"user_id" db:"user_id"`

	// Name is the product's display name.
	Name string `json:"product_name" db:"product_name"`

	// Details is the free-text product description.
	Details string `json:"details" db:"details"`

	// StockQuantity is the number of units available.
	StockQuantity int `json:"stock_quantity" db:"stock_quantity"`

	// Price is the unit price.
	Price float64 `json:"price" db:"price"`

	// Variations are the product's variation labels.
	Variations []Variation `json:"variations,omitempty"`
}

// Variation is a free-text label belonging to exactly one product
// (e.g., a colorway or size).
type Variation struct {
	ID        string `json:"variation_id" db:"variation_id"`
	ProductID string `json:"product_id" db:"product_id"`
	Name      string `json:"variation_name" db:"variation_name"`
}

// FeedPost is a post joined with its author's public display fields,
// as returned by the feed listing.
type FeedPost struct {
	PostID         string    `json:"post_id"`
	UserID         string    `json:"user_id"`
	Caption        string    `json:"caption"`
	Type           PostType  `json:"post_type"`
	CreatedAt      time.Time `json:"post_date"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
}
