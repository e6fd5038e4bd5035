package article

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Category Repository ===========

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository { return &categoryRepoPG{pool: pool} }

const categoryCols = `category_id, name, slug, status, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *categoryRepoPG) Create(ctx context.Context, c *Category) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO article_categories (name, slug, status) VALUES ($1, $2, 1)
		RETURNING category_id, status, created_at, updated_at`,
		c.Name, c.Slug).Scan(&c.ID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryCols+` FROM article_categories WHERE category_id = $1 AND status = 1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepoPG) Update(ctx context.Context, c *Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE article_categories SET name = $2, slug = $3, updated_at = NOW()
		WHERE category_id = $1 AND status = 1`,
		c.ID, c.Name, c.Slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepoPG) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE article_categories SET status = 0, updated_at = NOW()
		WHERE category_id = $1 AND status = 1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepoPG) ListActive(ctx context.Context) ([]*Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryCols+` FROM article_categories WHERE status = 1 ORDER BY name`)
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

// =========== Article Repository ===========

type articleRepoPG struct{ pool *pgxpool.Pool }

func NewArticleRepoPG(pool *pgxpool.Pool) ArticleRepository { return &articleRepoPG{pool: pool} }

func (r *articleRepoPG) Create(ctx context.Context, a *Article) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO articles (category_id, title, slug, author, summary, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING article_id, created_at, updated_at`,
		a.CategoryID, a.Title, a.Slug, a.Author, a.Summary, a.Status).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

const detailCols = `a.article_id, a.category_id, a.title, a.slug, a.author, a.summary,
	a.status, a.created_at, a.updated_at, c.name`

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	err := row.Scan(&d.ID, &d.CategoryID, &d.Title, &d.Slug, &d.Author, &d.Summary,
		&d.Status, &d.CreatedAt, &d.UpdatedAt, &d.CategoryName)
	return &d, err
}

func (r *articleRepoPG) getWhere(ctx context.Context, where string, arg interface{}) (*Detail, error) {
	d, err := scanDetail(r.pool.QueryRow(ctx, `
		SELECT `+detailCols+`
		FROM articles a
		JOIN article_categories c ON c.category_id = a.category_id
		WHERE `+where+` AND a.status <> 'deleted'`, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d.Blocks, err = listBlocks(ctx, r.pool, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *articleRepoPG) GetByID(ctx context.Context, id int64) (*Detail, error) {
	return r.getWhere(ctx, `a.article_id = $1`, id)
}

func (r *articleRepoPG) GetBySlug(ctx context.Context, slug string) (*Detail, error) {
	return r.getWhere(ctx, `a.slug = $1`, slug)
}

func (r *articleRepoPG) Update(ctx context.Context, a *Article) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE articles
		SET category_id = $2, title = $3, slug = $4, author = $5, summary = $6,
			status = $7, updated_at = NOW()
		WHERE article_id = $1 AND status <> 'deleted'`,
		a.ID, a.CategoryID, a.Title, a.Slug, a.Author, a.Summary, a.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepoPG) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE articles SET status = $2, updated_at = NOW()
		WHERE article_id = $1 AND status <> 'deleted'`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepoPG) List(ctx context.Context, status string, categoryID int64, limit, offset int) ([]*Detail, int, error) {
	where := ` WHERE a.status <> 'deleted'`
	var args []interface{}
	idx := 1
	if status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, status)
		idx++
	}
	if categoryID > 0 {
		where += fmt.Sprintf(` AND a.category_id = $%d`, idx)
		args = append(args, categoryID)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + detailCols + `
		FROM articles a
		JOIN article_categories c ON c.category_id = a.category_id` + where +
		fmt.Sprintf(` ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, d := range items {
		d.Blocks, err = listBlocks(ctx, r.pool, d.ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// =========== Block Repository ===========

type blockRepoPG struct{ pool *pgxpool.Pool }

func NewBlockRepoPG(pool *pgxpool.Pool) BlockRepository { return &blockRepoPG{pool: pool} }

const blockCols = `block_id, article_id, block_type, content, sort_order, created_at`

func scanBlock(row pgx.Row) (*Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.ArticleID, &b.Type, &b.Content, &b.SortOrder, &b.CreatedAt)
	return &b, err
}

func listBlocks(ctx context.Context, pool *pgxpool.Pool, articleID int64) ([]*Block, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+blockCols+` FROM article_media
		WHERE article_id = $1
		ORDER BY sort_order, block_id`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *blockRepoPG) Add(ctx context.Context, b *Block) error {
	if b.SortOrder > 0 {
		return r.pool.QueryRow(ctx, `
			INSERT INTO article_media (article_id, block_type, content, sort_order)
			VALUES ($1, $2, $3, $4)
			RETURNING block_id, created_at`,
			b.ArticleID, b.Type, b.Content, b.SortOrder).Scan(&b.ID, &b.CreatedAt)
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO article_media (article_id, block_type, content, sort_order)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM article_media WHERE article_id = $1))
		RETURNING block_id, sort_order, created_at`,
		b.ArticleID, b.Type, b.Content).Scan(&b.ID, &b.SortOrder, &b.CreatedAt)
}

func (r *blockRepoPG) GetByID(ctx context.Context, id int64) (*Block, error) {
	b, err := scanBlock(r.pool.QueryRow(ctx,
		`SELECT `+blockCols+` FROM article_media WHERE block_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *blockRepoPG) ListByArticle(ctx context.Context, articleID int64) ([]*Block, error) {
	return listBlocks(ctx, r.pool, articleID)
}

func (r *blockRepoPG) Update(ctx context.Context, b *Block) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE article_media SET block_type = $2, content = $3, sort_order = $4
		WHERE block_id = $1`,
		b.ID, b.Type, b.Content, b.SortOrder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func (r *blockRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM article_media WHERE block_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// =========== Saved Repository ===========

type savedRepoPG struct{ pool *pgxpool.Pool }

func NewSavedRepoPG(pool *pgxpool.Pool) SavedRepository { return &savedRepoPG{pool: pool} }

func (r *savedRepoPG) Save(ctx context.Context, userID, articleID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_articles (user_id, article_id) VALUES ($1, $2)
		ON CONFLICT (user_id, article_id) DO NOTHING`, userID, articleID)
	return err
}

func (r *savedRepoPG) Unsave(ctx context.Context, userID, articleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM saved_articles WHERE user_id = $1 AND article_id = $2`, userID, articleID)
	return err
}

func (r *savedRepoPG) IsSaved(ctx context.Context, userID, articleID int64) (bool, error) {
	var saved bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM saved_articles WHERE user_id = $1 AND article_id = $2
		)`, userID, articleID).Scan(&saved)
	return saved, err
}

func (r *savedRepoPG) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*SavedArticle, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM saved_articles s
		JOIN articles a ON a.article_id = s.article_id
		WHERE s.user_id = $1 AND a.status = 'published'`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+detailCols+`, s.created_at
		FROM saved_articles s
		JOIN articles a ON a.article_id = s.article_id
		JOIN article_categories c ON c.category_id = a.category_id
		WHERE s.user_id = $1 AND a.status = 'published'
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SavedArticle
	for rows.Next() {
		var sa SavedArticle
		if err := rows.Scan(&sa.ID, &sa.CategoryID, &sa.Title, &sa.Slug, &sa.Author, &sa.Summary,
			&sa.Status, &sa.CreatedAt, &sa.UpdatedAt, &sa.CategoryName, &sa.SavedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &sa)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, sa := range items {
		sa.Blocks, err = listBlocks(ctx, r.pool, sa.ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}
