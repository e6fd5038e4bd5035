package cart

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/caremarket/caremarket/internal/domain/catalog"
	"github.com/caremarket/caremarket/internal/platform/auth"
)

type mockRepo struct {
	byID     map[int64]*Item
	products *mockProducts
	nextID   int64
}

func newMockRepo(products *mockProducts) *mockRepo {
	return &mockRepo{byID: make(map[int64]*Item), products: products, nextID: 1}
}

func (r *mockRepo) GetByUserProduct(_ context.Context, userID, productID int64) (*Item, error) {
	for _, i := range r.byID {
		if i.UserID == userID && i.ProductID == productID {
			cp := *i
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *mockRepo) Insert(_ context.Context, item *Item) error {
	item.ID = r.nextID
	r.nextID++
	cp := *item
	r.byID[item.ID] = &cp
	return nil
}

func (r *mockRepo) SetQuantityStatus(_ context.Context, cartID int64, quantity, status int) error {
	i, ok := r.byID[cartID]
	if !ok {
		return ErrNotFound
	}
	i.Quantity = quantity
	i.Status = status
	return nil
}

func (r *mockRepo) GetOwned(_ context.Context, cartID, userID int64) (*Item, error) {
	i, ok := r.byID[cartID]
	if !ok || i.UserID != userID || i.Status != StatusActive {
		return nil, ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *mockRepo) ListActive(ctx context.Context, userID int64) ([]*ItemDetail, error) {
	var out []*ItemDetail
	for _, i := range r.byID {
		if i.UserID != userID || i.Status != StatusActive {
			continue
		}
		cp := *i
		d := &ItemDetail{Item: cp}
		if p, err := r.products.GetByID(ctx, i.ProductID); err == nil {
			d.Product = p
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type mockProducts struct {
	byID map[int64]*catalog.MedicineDetail
}

func (p *mockProducts) GetByID(_ context.Context, id int64) (*catalog.MedicineDetail, error) {
	m, ok := p.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return m, nil
}

func newTestService() (*Service, *mockRepo) {
	products := &mockProducts{byID: map[int64]*catalog.MedicineDetail{
		10: {Medicine: catalog.Medicine{ID: 10, Name: "Paracetamol", Price: 4.99}},
		11: {Medicine: catalog.Medicine{ID: 11, Name: "Ibuprofen", Price: 6.5}},
	}}
	repo := newMockRepo(products)
	return NewService(repo, products), repo
}

var patient = auth.Actor{ID: 7, Role: auth.RolePatient}

func TestAdd_NewItem(t *testing.T) {
	svc, _ := newTestService()

	item, err := svc.Add(context.Background(), patient, AddRequest{ProductID: 10, Quantity: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 2 || item.Status != StatusActive || item.UserID != patient.ID {
		t.Errorf("item = %+v", item)
	}
}

func TestAdd_ActiveRowIncrements(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	item, err := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if item.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", item.Quantity)
	}

	items, _ := svc.List(ctx, patient)
	if len(items) != 1 {
		t.Errorf("cart rows = %d, want 1", len(items))
	}
}

func TestAdd_RemovedRowRevivesWithNewQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 4})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, patient, first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	revived, err := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 1})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if revived.ID != first.ID {
		t.Errorf("expected the same row revived, got id %d want %d", revived.ID, first.ID)
	}
	if revived.Quantity != 1 {
		t.Errorf("quantity = %d, want 1 (not incremented)", revived.Quantity)
	}
	if revived.Status != StatusActive {
		t.Errorf("status = %d, want active", revived.Status)
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  AddRequest
	}{
		{"missing product", AddRequest{Quantity: 1}},
		{"zero quantity", AddRequest{ProductID: 10}},
		{"negative quantity", AddRequest{ProductID: 10, Quantity: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, patient, tc.req); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := svc.Add(ctx, patient, AddRequest{ProductID: 999, Quantity: 1}); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("unknown product: got %v, want ErrProductNotFound", err)
	}
}

func TestList_AttachesProductAndSkipsRemoved(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 1})
	if _, err := svc.Add(ctx, patient, AddRequest{ProductID: 11, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(ctx, patient, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	items, err := svc.List(ctx, patient)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Product == nil || items[0].Product.Name != "Ibuprofen" {
		t.Errorf("product detail missing: %+v", items[0].Product)
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	other := auth.Actor{ID: 8, Role: auth.RolePatient}

	if _, err := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	items, err := svc.List(ctx, other)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("other user sees %d items, want 0", len(items))
	}
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, _ := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 1})

	got, err := svc.UpdateQuantity(ctx, patient, item.ID, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", got.Quantity)
	}

	if _, err := svc.UpdateQuantity(ctx, patient, item.ID, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
	other := auth.Actor{ID: 8, Role: auth.RolePatient}
	if _, err := svc.UpdateQuantity(ctx, other, item.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign item: got %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	item, _ := svc.Add(ctx, patient, AddRequest{ProductID: 10, Quantity: 3})
	if err := svc.Remove(ctx, patient, item.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	stored := repo.byID[item.ID]
	if stored.Status != StatusRemoved {
		t.Errorf("status = %d, want removed", stored.Status)
	}
	if stored.Quantity != 3 {
		t.Errorf("quantity = %d, want kept at 3", stored.Quantity)
	}

	if err := svc.Remove(ctx, patient, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double remove: got %v, want ErrNotFound", err)
	}
}
