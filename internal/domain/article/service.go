package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caremarket/caremarket/internal/platform/auth"
)

var (
	ErrNotFound         = errors.New("article not found")
	ErrCategoryNotFound = errors.New("article category not found")
	ErrBlockNotFound    = errors.New("article block not found")
)

type Service struct {
	categories CategoryRepository
	articles   ArticleRepository
	blocks     BlockRepository
	saved      SavedRepository
}

func NewService(categories CategoryRepository, articles ArticleRepository, blocks BlockRepository, saved SavedRepository) *Service {
	return &Service{categories: categories, articles: articles, blocks: blocks, saved: saved}
}

// -- Categories --

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	c := &Category{Name: name, Slug: Slugify(name)}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Slug = Slugify(name)
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.SoftDelete(ctx, id)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.ListActive(ctx)
}

// -- Articles --

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Detail, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(req.Author) == "" {
		return nil, fmt.Errorf("author is required")
	}
	if req.CategoryID <= 0 {
		return nil, fmt.Errorf("category_id is required")
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	if status != StatusDraft && status != StatusPublished {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	a := &Article{
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Slug:       NewSlug(req.Title),
		Author:     strings.TrimSpace(req.Author),
		Summary:    req.Summary,
		Status:     status,
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, a.ID)
}

// Get returns a single article. Non-admin callers only see published ones.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id int64) (*Detail, error) {
	d, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusPublished && !actor.IsAdmin() {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) GetBySlug(ctx context.Context, actor auth.Actor, slug string) (*Detail, error) {
	d, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusPublished && !actor.IsAdmin() {
		return nil, ErrNotFound
	}
	return d, nil
}

// List returns published articles for everyone; admins may pass a status
// filter to see drafts too.
func (s *Service) List(ctx context.Context, actor auth.Actor, status string, categoryID int64, limit, offset int) ([]*Detail, int, error) {
	if !actor.IsAdmin() {
		status = StatusPublished
	} else if status != "" && status != StatusDraft && status != StatusPublished {
		return nil, 0, fmt.Errorf("invalid status %q", status)
	}
	return s.articles.List(ctx, status, categoryID, limit, offset)
}

// Update rewrites only the fields present in the request. Changing the
// title regenerates the slug.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Detail, error) {
	d, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a := d.Article

	if req.CategoryID != nil {
		if *req.CategoryID <= 0 {
			return nil, fmt.Errorf("category_id is required")
		}
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		a.CategoryID = *req.CategoryID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		if title != a.Title {
			a.Title = title
			a.Slug = NewSlug(title)
		}
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		if author == "" {
			return nil, fmt.Errorf("author cannot be empty")
		}
		a.Author = author
	}
	if req.Summary != nil {
		a.Summary = req.Summary
	}
	if req.Status != nil {
		if *req.Status != StatusDraft && *req.Status != StatusPublished {
			return nil, fmt.Errorf("invalid status %q", *req.Status)
		}
		a.Status = *req.Status
	}

	if err := s.articles.Update(ctx, &a); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.articles.SetStatus(ctx, id, StatusDeleted)
}

// -- Blocks --

// AddBlock appends a content block. Image and video blocks carry the URL
// of an already uploaded file in Content.
func (s *Service) AddBlock(ctx context.Context, articleID int64, req BlockRequest) (*Block, error) {
	if _, err := s.articles.GetByID(ctx, articleID); err != nil {
		return nil, err
	}
	if err := validateBlock(req); err != nil {
		return nil, err
	}

	b := &Block{ArticleID: articleID, Type: req.Type, Content: req.Content}
	if req.SortOrder != nil && *req.SortOrder > 0 {
		b.SortOrder = *req.SortOrder
	}
	if err := s.blocks.Add(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) UpdateBlock(ctx context.Context, blockID int64, req BlockRequest) (*Block, error) {
	b, err := s.blocks.GetByID(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = b.Type
	}
	if req.Content == "" {
		req.Content = b.Content
	}
	if err := validateBlock(req); err != nil {
		return nil, err
	}

	b.Type = req.Type
	b.Content = req.Content
	if req.SortOrder != nil && *req.SortOrder > 0 {
		b.SortOrder = *req.SortOrder
	}
	if err := s.blocks.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) DeleteBlock(ctx context.Context, blockID int64) error {
	return s.blocks.Delete(ctx, blockID)
}

func validateBlock(req BlockRequest) error {
	switch req.Type {
	case BlockText:
		if strings.TrimSpace(req.Content) == "" {
			return fmt.Errorf("text blocks require content")
		}
	case BlockImage, BlockVideo:
		if strings.TrimSpace(req.Content) == "" {
			return fmt.Errorf("%s blocks require a file", req.Type)
		}
	default:
		return fmt.Errorf("invalid block type %q", req.Type)
	}
	return nil
}

// -- Saves --

// ToggleSave bookmarks a published article, or removes the bookmark when
// it already exists. Returns whether the article is saved afterwards.
func (s *Service) ToggleSave(ctx context.Context, actor auth.Actor, articleID int64) (bool, error) {
	d, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return false, err
	}
	if d.Status != StatusPublished {
		return false, ErrNotFound
	}

	saved, err := s.saved.IsSaved(ctx, actor.ID, articleID)
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.saved.Unsave(ctx, actor.ID, articleID)
	}
	return true, s.saved.Save(ctx, actor.ID, articleID)
}

func (s *Service) ListSaved(ctx context.Context, actor auth.Actor, limit, offset int) ([]*SavedArticle, int, error) {
	return s.saved.ListByUser(ctx, actor.ID, limit, offset)
}
