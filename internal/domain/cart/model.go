package cart

import (
	"time"

	"github.com/caremarket/caremarket/internal/domain/catalog"
)

const (
	StatusActive  = 1
	StatusRemoved = 0
)

// Item maps to the cart table. Removal is a soft delete: status flips to 0
// and the row stays behind so a later Add of the same product can revive it.
type Item struct {
	ID        int64     `db:"cart_id" json:"cart_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Status    int       `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ItemDetail is a cart row joined with its product and the product's images.
type ItemDetail struct {
	Item
	Product *catalog.MedicineDetail `json:"product"`
}

type AddRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
