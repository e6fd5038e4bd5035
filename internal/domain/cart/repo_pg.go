package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caremarket/caremarket/internal/domain/catalog"
)

type repoPG struct {
	pool     *pgxpool.Pool
	products catalog.MedicineRepository
}

func NewRepoPG(pool *pgxpool.Pool, products catalog.MedicineRepository) Repository {
	return &repoPG{pool: pool, products: products}
}

const itemCols = `cart_id, user_id, product_id, quantity, status, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.UserID, &i.ProductID, &i.Quantity, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *repoPG) GetByUserProduct(ctx context.Context, userID, productID int64) (*Item, error) {
	i, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemCols+` FROM cart WHERE user_id = $1 AND product_id = $2`,
		userID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *repoPG) Insert(ctx context.Context, item *Item) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO cart (user_id, product_id, quantity, status)
		VALUES ($1, $2, $3, $4)
		RETURNING cart_id, created_at, updated_at`,
		item.UserID, item.ProductID, item.Quantity, item.Status).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *repoPG) SetQuantityStatus(ctx context.Context, cartID int64, quantity, status int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cart SET quantity = $2, status = $3, updated_at = NOW() WHERE cart_id = $1`,
		cartID, quantity, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetOwned(ctx context.Context, cartID, userID int64) (*Item, error) {
	i, err := scanItem(r.pool.QueryRow(ctx, `
		SELECT `+itemCols+` FROM cart
		WHERE cart_id = $1 AND user_id = $2 AND status = $3`,
		cartID, userID, StatusActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *repoPG) ListActive(ctx context.Context, userID int64) ([]*ItemDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+itemCols+` FROM cart
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC`, userID, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ItemDetail
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, &ItemDetail{Item: *i})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, it := range items {
		p, err := r.products.GetByID(ctx, it.ProductID)
		if err != nil {
			// Product removed after it was carted. Leave the item without
			// detail rather than failing the whole listing.
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return nil, err
		}
		it.Product = p
	}
	return items, nil
}
