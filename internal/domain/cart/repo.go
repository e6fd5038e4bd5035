package cart

import "context"

type Repository interface {
	// GetByUserProduct returns the row for (user, product) regardless of
	// status, so Add can revive a soft-deleted entry.
	GetByUserProduct(ctx context.Context, userID, productID int64) (*Item, error)
	Insert(ctx context.Context, item *Item) error
	// SetQuantityStatus rewrites quantity and status on an existing row.
	SetQuantityStatus(ctx context.Context, cartID int64, quantity, status int) error
	// GetOwned returns the active row only when it belongs to userID.
	GetOwned(ctx context.Context, cartID, userID int64) (*Item, error)
	ListActive(ctx context.Context, userID int64) ([]*ItemDetail, error)
}
