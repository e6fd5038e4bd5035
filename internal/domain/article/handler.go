package article

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/media"
	"github.com/caremarket/caremarket/internal/platform/respond"
	"github.com/caremarket/caremarket/pkg/pagination"
)

type Handler struct {
	svc      *Service
	uploader media.Uploader
}

func NewHandler(svc *Service, uploader media.Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/articles", h.List)
	api.GET("/articles/:id", h.Get)
	api.GET("/article-categories", h.ListCategories)
	api.GET("/article-categories/:id", h.GetCategory)

	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.POST("/articles/:id/save", h.ToggleSave)
	patient.GET("/saved-articles", h.ListSaved)

	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/article-categories", h.CreateCategory)
	admin.PUT("/article-categories/:id", h.UpdateCategory)
	admin.DELETE("/article-categories/:id", h.DeleteCategory)

	admin.POST("/articles", h.Create)
	admin.PUT("/articles/:id", h.Update)
	admin.DELETE("/articles/:id", h.Delete)

	admin.POST("/articles/:id/blocks", h.AddBlock)
	admin.PUT("/article-blocks/:id", h.UpdateBlock)
	admin.DELETE("/article-blocks/:id", h.DeleteBlock)
}

// -- Categories --

func (h *Handler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	cat, err := h.svc.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Category created successfully", cat)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid category id")
	}
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	cat, err := h.svc.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return respond.Fail(c, "Category not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Category updated successfully", cat)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid category id")
	}

	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return respond.Fail(c, "Category not found")
		}
		return respond.Err(c, "Failed to delete category", err)
	}
	return respond.OK(c, "Category deleted successfully", nil)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid category id")
	}

	cat, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return respond.Fail(c, "Category not found")
		}
		return respond.Err(c, "Failed to fetch category", err)
	}
	return respond.OK(c, "Category fetched successfully", cat)
}

func (h *Handler) ListCategories(c echo.Context) error {
	cats, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return respond.Err(c, "Failed to fetch categories", err)
	}
	return respond.OK(c, "Categories fetched successfully", cats)
}

// -- Articles --

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	d, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return respond.Fail(c, "Category not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Article created successfully", d)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	actor, _ := auth.ActorFromContext(ctx)

	var d *Detail
	var err error
	if id, perr := strconv.ParseInt(c.Param("id"), 10, 64); perr == nil {
		d, err = h.svc.Get(ctx, actor, id)
	} else {
		// the path segment doubles as a slug
		d, err = h.svc.GetBySlug(ctx, actor, c.Param("id"))
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Article not found")
		}
		return respond.Err(c, "Failed to fetch article", err)
	}
	return respond.OK(c, "Article fetched successfully", d)
}

func (h *Handler) List(c echo.Context) error {
	actor, _ := auth.ActorFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	var categoryID int64
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, _ = strconv.ParseInt(raw, 10, 64)
	}

	items, total, err := h.svc.List(c.Request().Context(), actor,
		c.QueryParam("status"), categoryID, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Articles fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid article id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	d, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.Fail(c, "Article not found")
		case errors.Is(err, ErrCategoryNotFound):
			return respond.Fail(c, "Category not found")
		default:
			return respond.Fail(c, err.Error())
		}
	}
	return respond.OK(c, "Article updated successfully", d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid article id")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Article not found")
		}
		return respond.Err(c, "Failed to delete article", err)
	}
	return respond.OK(c, "Article deleted successfully", nil)
}

// -- Blocks --

// AddBlock accepts either a JSON body (text blocks) or a multipart form
// with block_type plus a "file" part for image and video blocks.
func (h *Handler) AddBlock(c echo.Context) error {
	articleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid article id")
	}
	req, err := h.bindBlock(c)
	if err != nil {
		return respond.Fail(c, err.Error())
	}

	b, err := h.svc.AddBlock(c.Request().Context(), articleID, *req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Article not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Block added successfully", b)
}

func (h *Handler) UpdateBlock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid block id")
	}
	req, err := h.bindBlock(c)
	if err != nil {
		return respond.Fail(c, err.Error())
	}

	b, err := h.svc.UpdateBlock(c.Request().Context(), id, *req)
	if err != nil {
		if errors.Is(err, ErrBlockNotFound) {
			return respond.Fail(c, "Block not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Block updated successfully", b)
}

func (h *Handler) DeleteBlock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid block id")
	}

	if err := h.svc.DeleteBlock(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrBlockNotFound) {
			return respond.Fail(c, "Block not found")
		}
		return respond.Err(c, "Failed to delete block", err)
	}
	return respond.OK(c, "Block deleted successfully", nil)
}

func (h *Handler) bindBlock(c echo.Context) (*BlockRequest, error) {
	fileHeader, ferr := c.FormFile("file")
	if ferr != nil {
		var req BlockRequest
		if err := c.Bind(&req); err != nil {
			return nil, errors.New("Invalid request body")
		}
		return &req, nil
	}

	req := BlockRequest{Type: c.FormValue("block_type")}
	if raw := c.FormValue("sort_order"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			req.SortOrder = &v
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request().Context(), media.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		return nil, err
	}
	req.Content = url
	return &req, nil
}

// -- Saves --

func (h *Handler) ToggleSave(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid article id")
	}

	saved, err := h.svc.ToggleSave(c.Request().Context(), auth.MustActor(c), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Article not found")
		}
		return respond.Err(c, "Failed to toggle save", err)
	}
	msg := "Article saved successfully"
	if !saved {
		msg = "Article removed from saved"
	}
	return respond.OK(c, msg, map[string]bool{"saved": saved})
}

func (h *Handler) ListSaved(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSaved(c.Request().Context(), auth.MustActor(c), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, "Failed to fetch saved articles", err)
	}
	return respond.OK(c, "Saved articles fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
