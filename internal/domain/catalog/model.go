package catalog

import "time"

// Category maps to the medicine_categories table.
type Category struct {
	ID        int64     `db:"category_id" json:"category_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Medicine maps to the medicines table.
type Medicine struct {
	ID          int64     `db:"medicine_id" json:"medicine_id"`
	Name        string    `db:"name" json:"name"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
	Price       float64   `db:"price" json:"price"`
	Description *string   `db:"description" json:"description,omitempty"`
	Stock       int       `db:"stock" json:"stock"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Media maps to the medicine_media table. Exactly one image per medicine is
// primary as long as the medicine has any image at all.
type Media struct {
	ID         int64     `db:"media_id" json:"media_id"`
	MedicineID int64     `db:"medicine_id" json:"medicine_id"`
	URL        string    `db:"url" json:"url"`
	IsPrimary  bool      `db:"is_primary" json:"is_primary"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MedicineDetail is a Medicine joined with its category name and images.
type MedicineDetail struct {
	Medicine
	CategoryName string   `db:"category_name" json:"category_name"`
	Images       []*Media `json:"images"`
}

type MedicineRequest struct {
	Name        string  `json:"name"`
	CategoryID  int64   `json:"category_id"`
	Price       float64 `json:"price"`
	Description *string `json:"description,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
}
