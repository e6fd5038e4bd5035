package article

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusDeleted   = "deleted"
)

// Block types. Text blocks carry their content inline; image and video
// blocks carry the URL of an uploaded file.
const (
	BlockText  = "text"
	BlockImage = "image"
	BlockVideo = "video"
)

// Category maps to the article_categories table. Deletion is a soft delete
// via the status flag.
type Category struct {
	ID        int64     `db:"category_id" json:"category_id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Status    int       `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Article maps to the articles table.
type Article struct {
	ID         int64     `db:"article_id" json:"article_id"`
	CategoryID int64     `db:"category_id" json:"category_id"`
	Title      string    `db:"title" json:"title"`
	Slug       string    `db:"slug" json:"slug"`
	Author     string    `db:"author" json:"author"`
	Summary    *string   `db:"summary" json:"summary,omitempty"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Block maps to the article_media table. Blocks render in sort_order.
type Block struct {
	ID        int64     `db:"block_id" json:"block_id"`
	ArticleID int64     `db:"article_id" json:"article_id"`
	Type      string    `db:"block_type" json:"block_type"`
	Content   string    `db:"content" json:"content"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Detail is an Article joined with its category name and ordered blocks.
type Detail struct {
	Article
	CategoryName string   `db:"category_name" json:"category_name"`
	Blocks       []*Block `json:"blocks"`
}

// SavedArticle is a bookmarked article with the time it was saved.
type SavedArticle struct {
	Detail
	SavedAt time.Time `db:"saved_at" json:"saved_at"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CreateRequest struct {
	CategoryID int64   `json:"category_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Summary    *string `json:"summary,omitempty"`
	Status     string  `json:"status,omitempty"`
}

type UpdateRequest struct {
	CategoryID *int64  `json:"category_id,omitempty"`
	Title      *string `json:"title,omitempty"`
	Author     *string `json:"author,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	Status     *string `json:"status,omitempty"`
}

type BlockRequest struct {
	Type      string `json:"block_type"`
	Content   string `json:"content,omitempty"`
	SortOrder *int   `json:"sort_order,omitempty"`
}

// Slugify lowercases s and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NewSlug builds a unique article slug from the title plus a short random
// suffix, so two articles may share a title.
func NewSlug(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	base := Slugify(title)
	if base == "" {
		return suffix
	}
	return fmt.Sprintf("%s-%s", base, suffix)
}
