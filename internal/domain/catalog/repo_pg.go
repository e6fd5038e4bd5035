package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Category Repository ===========

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository { return &categoryRepoPG{pool: pool} }

const categoryCols = `category_id, name, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *categoryRepoPG) Create(ctx context.Context, c *Category) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO medicine_categories (name) VALUES ($1)
		RETURNING category_id, created_at, updated_at`,
		c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCategory
	}
	return err
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryCols+` FROM medicine_categories WHERE category_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepoPG) Update(ctx context.Context, c *Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medicine_categories SET name = $2, updated_at = NOW() WHERE category_id = $1`,
		c.ID, c.Name)
	if isUniqueViolation(err) {
		return ErrDuplicateCategory
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medicine_categories WHERE category_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepoPG) List(ctx context.Context) ([]*Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryCols+` FROM medicine_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// =========== Medicine Repository ===========

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository { return &medicineRepoPG{pool: pool} }

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medicines (name, category_id, price, description, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING medicine_id, created_at, updated_at`,
		m.Name, m.CategoryID, m.Price, m.Description, m.Stock).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

const medicineDetailCols = `m.medicine_id, m.name, m.category_id, m.price, m.description,
	m.stock, m.created_at, m.updated_at, c.name`

func scanMedicineDetail(row pgx.Row) (*MedicineDetail, error) {
	var m MedicineDetail
	err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Price, &m.Description,
		&m.Stock, &m.CreatedAt, &m.UpdatedAt, &m.CategoryName)
	return &m, err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id int64) (*MedicineDetail, error) {
	m, err := scanMedicineDetail(r.pool.QueryRow(ctx, `
		SELECT `+medicineDetailCols+`
		FROM medicines m
		JOIN medicine_categories c ON c.category_id = m.category_id
		WHERE m.medicine_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	m.Images, err = listMedia(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medicines
		SET name = $2, category_id = $3, price = $4, description = $5, stock = $6, updated_at = NOW()
		WHERE medicine_id = $1`,
		m.ID, m.Name, m.CategoryID, m.Price, m.Description, m.Stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepoPG) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM medicine_media WHERE medicine_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM medicines WHERE medicine_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *medicineRepoPG) List(ctx context.Context, categoryID int64, limit, offset int) ([]*MedicineDetail, int, error) {
	where := ``
	var args []interface{}
	idx := 1
	if categoryID > 0 {
		where = fmt.Sprintf(` WHERE m.category_id = $%d`, idx)
		args = append(args, categoryID)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medicines m`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + medicineDetailCols + `
		FROM medicines m
		JOIN medicine_categories c ON c.category_id = m.category_id` + where +
		fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicineDetail
	for rows.Next() {
		m, err := scanMedicineDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, m := range items {
		m.Images, err = listMedia(ctx, r.pool, m.ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// =========== Media Repository ===========

type mediaRepoPG struct{ pool *pgxpool.Pool }

func NewMediaRepoPG(pool *pgxpool.Pool) MediaRepository { return &mediaRepoPG{pool: pool} }

const mediaCols = `media_id, medicine_id, url, is_primary, created_at`

func scanMedia(row pgx.Row) (*Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.MedicineID, &m.URL, &m.IsPrimary, &m.CreatedAt)
	return &m, err
}

func listMedia(ctx context.Context, pool *pgxpool.Pool, medicineID int64) ([]*Media, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+mediaCols+` FROM medicine_media
		WHERE medicine_id = $1
		ORDER BY is_primary DESC, media_id`, medicineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *mediaRepoPG) Add(ctx context.Context, m *Media) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO medicine_media (medicine_id, url, is_primary)
		VALUES ($1, $2, $3)
		RETURNING media_id, created_at`,
		m.MedicineID, m.URL, m.IsPrimary).Scan(&m.ID, &m.CreatedAt)
}

func (r *mediaRepoPG) GetByID(ctx context.Context, id int64) (*Media, error) {
	m, err := scanMedia(r.pool.QueryRow(ctx,
		`SELECT `+mediaCols+` FROM medicine_media WHERE media_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *mediaRepoPG) ListByMedicine(ctx context.Context, medicineID int64) ([]*Media, error) {
	return listMedia(ctx, r.pool, medicineID)
}

func (r *mediaRepoPG) SetPrimary(ctx context.Context, medicineID, mediaID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE medicine_media SET is_primary = FALSE WHERE medicine_id = $1`, medicineID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx,
		`UPDATE medicine_media SET is_primary = TRUE WHERE media_id = $1 AND medicine_id = $2`,
		mediaID, medicineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *mediaRepoPG) ReplaceURL(ctx context.Context, mediaID int64, url string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE medicine_media SET url = $2 WHERE media_id = $1`, mediaID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mediaRepoPG) Delete(ctx context.Context, mediaID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var medicineID int64
	var wasPrimary bool
	err = tx.QueryRow(ctx, `
		DELETE FROM medicine_media WHERE media_id = $1
		RETURNING medicine_id, is_primary`, mediaID).Scan(&medicineID, &wasPrimary)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if wasPrimary {
		// Promote the oldest remaining image, if any.
		if _, err := tx.Exec(ctx, `
			UPDATE medicine_media SET is_primary = TRUE
			WHERE media_id = (
				SELECT media_id FROM medicine_media WHERE medicine_id = $1 ORDER BY media_id LIMIT 1
			)`, medicineID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
