package catalog

import "context"

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Category, error)
}

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id int64) (*MedicineDetail, error)
	Update(ctx context.Context, m *Medicine) error
	// Delete removes the medicine and its media rows.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, categoryID int64, limit, offset int) ([]*MedicineDetail, int, error)
}

type MediaRepository interface {
	Add(ctx context.Context, m *Media) error
	GetByID(ctx context.Context, id int64) (*Media, error)
	ListByMedicine(ctx context.Context, medicineID int64) ([]*Media, error)
	// SetPrimary marks one image primary and clears the flag on its siblings.
	SetPrimary(ctx context.Context, medicineID, mediaID int64) error
	ReplaceURL(ctx context.Context, mediaID int64, url string) error
	// Delete removes an image. When the removed image was primary and other
	// images remain, one of them becomes the new primary.
	Delete(ctx context.Context, mediaID int64) error
}
