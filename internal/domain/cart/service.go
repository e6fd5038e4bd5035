package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/caremarket/caremarket/internal/domain/catalog"
	"github.com/caremarket/caremarket/internal/platform/auth"
)

var (
	ErrNotFound        = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

// ProductFinder is the slice of the medicine catalog the cart needs.
type ProductFinder interface {
	GetByID(ctx context.Context, id int64) (*catalog.MedicineDetail, error)
}

type Service struct {
	repo     Repository
	products ProductFinder
}

func NewService(repo Repository, products ProductFinder) *Service {
	return &Service{repo: repo, products: products}
}

// Add puts a product in the actor's cart. A soft-deleted row for the same
// product is revived with the requested quantity; an active row has its
// quantity incremented instead.
func (s *Service) Add(ctx context.Context, actor auth.Actor, req AddRequest) (*Item, error) {
	if req.ProductID <= 0 {
		return nil, fmt.Errorf("product_id is required")
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	existing, err := s.repo.GetByUserProduct(ctx, actor.ID, req.ProductID)
	switch {
	case errors.Is(err, ErrNotFound):
		item := &Item{
			UserID:    actor.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Status:    StatusActive,
		}
		if err := s.repo.Insert(ctx, item); err != nil {
			return nil, err
		}
		return item, nil
	case err != nil:
		return nil, err
	}

	quantity := req.Quantity
	if existing.Status == StatusActive {
		quantity = existing.Quantity + req.Quantity
	}
	if err := s.repo.SetQuantityStatus(ctx, existing.ID, quantity, StatusActive); err != nil {
		return nil, err
	}
	existing.Quantity = quantity
	existing.Status = StatusActive
	return existing, nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor) ([]*ItemDetail, error) {
	return s.repo.ListActive(ctx, actor.ID)
}

func (s *Service) UpdateQuantity(ctx context.Context, actor auth.Actor, cartID int64, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	item, err := s.repo.GetOwned(ctx, cartID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantityStatus(ctx, item.ID, quantity, StatusActive); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// Remove soft-deletes a cart row; the quantity is kept for bookkeeping.
func (s *Service) Remove(ctx context.Context, actor auth.Actor, cartID int64) error {
	item, err := s.repo.GetOwned(ctx, cartID, actor.ID)
	if err != nil {
		return err
	}
	return s.repo.SetQuantityStatus(ctx, item.ID, item.Quantity, StatusRemoved)
}
