package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("category already exists")
)

type Service struct {
	categories CategoryRepository
	medicines  MedicineRepository
	media      MediaRepository
}

func NewService(categories CategoryRepository, medicines MedicineRepository, media MediaRepository) *Service {
	return &Service{categories: categories, medicines: medicines, media: media}
}

// -- Categories --

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	c := &Category{Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

// -- Medicines --

// CreateMedicine inserts the medicine and attaches imageURLs as its media,
// first image primary.
func (s *Service) CreateMedicine(ctx context.Context, req MedicineRequest, imageURLs []string) (*MedicineDetail, error) {
	if err := validateMedicine(req); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("category %d does not exist", req.CategoryID)
		}
		return nil, err
	}

	m := &Medicine{
		Name:        strings.TrimSpace(req.Name),
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Description: req.Description,
	}
	if req.Stock != nil {
		m.Stock = *req.Stock
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return nil, err
	}

	for i, url := range imageURLs {
		if err := s.media.Add(ctx, &Media{
			MedicineID: m.ID,
			URL:        url,
			IsPrimary:  i == 0,
		}); err != nil {
			return nil, err
		}
	}
	return s.medicines.GetByID(ctx, m.ID)
}

func (s *Service) GetMedicine(ctx context.Context, id int64) (*MedicineDetail, error) {
	return s.medicines.GetByID(ctx, id)
}

// UpdateMedicine rewrites the medicine's fields and appends any new images.
// Appended images never steal the primary flag.
func (s *Service) UpdateMedicine(ctx context.Context, id int64, req MedicineRequest, imageURLs []string) (*MedicineDetail, error) {
	if err := validateMedicine(req); err != nil {
		return nil, err
	}

	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != existing.CategoryID {
		if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("category %d does not exist", req.CategoryID)
			}
			return nil, err
		}
	}

	m := &Medicine{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Description: req.Description,
		Stock:       existing.Stock,
	}
	if req.Stock != nil {
		m.Stock = *req.Stock
	}
	if err := s.medicines.Update(ctx, m); err != nil {
		return nil, err
	}

	hasImages := len(existing.Images) > 0
	for i, url := range imageURLs {
		if err := s.media.Add(ctx, &Media{
			MedicineID: id,
			URL:        url,
			IsPrimary:  !hasImages && i == 0,
		}); err != nil {
			return nil, err
		}
	}
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) DeleteMedicine(ctx context.Context, id int64) error {
	return s.medicines.Delete(ctx, id)
}

func (s *Service) ListMedicines(ctx context.Context, categoryID int64, limit, offset int) ([]*MedicineDetail, int, error) {
	return s.medicines.List(ctx, categoryID, limit, offset)
}

// -- Media --

func (s *Service) SetPrimaryImage(ctx context.Context, mediaID int64) error {
	m, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	return s.media.SetPrimary(ctx, m.MedicineID, m.ID)
}

// ReplaceImage swaps the stored URL and optionally promotes the image to
// primary.
func (s *Service) ReplaceImage(ctx context.Context, mediaID int64, url string, makePrimary bool) error {
	m, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if err := s.media.ReplaceURL(ctx, m.ID, url); err != nil {
		return err
	}
	if makePrimary {
		return s.media.SetPrimary(ctx, m.MedicineID, m.ID)
	}
	return nil
}

func (s *Service) DeleteImage(ctx context.Context, mediaID int64) error {
	return s.media.Delete(ctx, mediaID)
}

func validateMedicine(req MedicineRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.CategoryID <= 0 {
		return fmt.Errorf("category_id is required")
	}
	if req.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	return nil
}
