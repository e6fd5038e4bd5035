package article

import "context"

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, c *Category) error
	// SoftDelete flips the status flag; the row stays for old articles.
	SoftDelete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]*Category, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, a *Article) error
	// GetByID returns the article with category name and ordered blocks.
	GetByID(ctx context.Context, id int64) (*Detail, error)
	GetBySlug(ctx context.Context, slug string) (*Detail, error)
	Update(ctx context.Context, a *Article) error
	SetStatus(ctx context.Context, id int64, status string) error
	// List filters by status ("" means every non-deleted article) and an
	// optional category, newest first.
	List(ctx context.Context, status string, categoryID int64, limit, offset int) ([]*Detail, int, error)
}

type BlockRepository interface {
	// Add appends the block; a zero SortOrder is replaced with max+1 for
	// the article.
	Add(ctx context.Context, b *Block) error
	GetByID(ctx context.Context, id int64) (*Block, error)
	ListByArticle(ctx context.Context, articleID int64) ([]*Block, error)
	Update(ctx context.Context, b *Block) error
	Delete(ctx context.Context, id int64) error
}

type SavedRepository interface {
	Save(ctx context.Context, userID, articleID int64) error
	Unsave(ctx context.Context, userID, articleID int64) error
	IsSaved(ctx context.Context, userID, articleID int64) (bool, error)
	// ListByUser returns saved articles newest-saved first.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*SavedArticle, int, error)
}
