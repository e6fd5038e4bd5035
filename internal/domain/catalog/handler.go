package catalog

import (
	"encoding/json"
	"errors"
	"mime/multipart"
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
	api.GET("/medicines", h.ListMedicines)
	api.GET("/medicines/:id", h.GetMedicine)
	api.GET("/medicine-categories", h.ListCategories)
	api.GET("/medicine-categories/:id", h.GetCategory)

	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/medicine-categories", h.CreateCategory)
	admin.PUT("/medicine-categories/:id", h.UpdateCategory)
	admin.DELETE("/medicine-categories/:id", h.DeleteCategory)

	admin.POST("/medicines", h.CreateMedicine)
	admin.PUT("/medicines/:id", h.UpdateMedicine)
	admin.DELETE("/medicines/:id", h.DeleteMedicine)

	admin.PUT("/medicine-media/:id/primary", h.SetPrimaryImage)
	admin.PUT("/medicine-media/:id", h.ReplaceImage)
	admin.DELETE("/medicine-media/:id", h.DeleteImage)
}

// -- Categories --

func (h *Handler) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	cat, err := h.svc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		if errors.Is(err, ErrDuplicateCategory) {
			return respond.Fail(c, "Category with this name already exists")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Category created successfully", cat)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid category id")
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	cat, err := h.svc.UpdateCategory(c.Request().Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.Fail(c, "Category not found")
		case errors.Is(err, ErrDuplicateCategory):
			return respond.Fail(c, "Category with this name already exists")
		default:
			return respond.Fail(c, err.Error())
		}
	}
	return respond.OK(c, "Category updated successfully", cat)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid category id")
	}

	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
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
		if errors.Is(err, ErrNotFound) {
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

// -- Medicines --

// CreateMedicine accepts a multipart form: a "medicine" field carrying the
// JSON payload and any number of "images" file parts.
func (h *Handler) CreateMedicine(c echo.Context) error {
	req, err := bindMedicineForm(c)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	urls, err := h.uploadImages(c)
	if err != nil {
		return respond.Fail(c, err.Error())
	}

	m, err := h.svc.CreateMedicine(c.Request().Context(), *req, urls)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Medicine created successfully", m)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid medicine id")
	}

	m, err := h.svc.GetMedicine(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Medicine not found")
		}
		return respond.Err(c, "Failed to fetch medicine", err)
	}
	return respond.OK(c, "Medicine fetched successfully", m)
}

func (h *Handler) ListMedicines(c echo.Context) error {
	pg := pagination.FromContext(c)
	var categoryID int64
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, _ = strconv.ParseInt(raw, 10, 64)
	}

	items, total, err := h.svc.ListMedicines(c.Request().Context(), categoryID, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, "Failed to fetch medicines", err)
	}
	return respond.OK(c, "Medicines fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid medicine id")
	}
	req, err := bindMedicineForm(c)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	urls, err := h.uploadImages(c)
	if err != nil {
		return respond.Fail(c, err.Error())
	}

	m, err := h.svc.UpdateMedicine(c.Request().Context(), id, *req, urls)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Medicine not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Medicine updated successfully", m)
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid medicine id")
	}

	if err := h.svc.DeleteMedicine(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Medicine not found")
		}
		return respond.Err(c, "Failed to delete medicine", err)
	}
	return respond.OK(c, "Medicine deleted successfully", nil)
}

// -- Media --

func (h *Handler) SetPrimaryImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid media id")
	}

	if err := h.svc.SetPrimaryImage(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Image not found")
		}
		return respond.Err(c, "Failed to update image", err)
	}
	return respond.OK(c, "Primary image updated successfully", nil)
}

// ReplaceImage uploads a new file for an existing media row. An optional
// "is_primary" form value promotes the image.
func (h *Handler) ReplaceImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid media id")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return respond.Fail(c, "image file is required")
	}
	url, err := h.uploadOne(c, fileHeader)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	makePrimary, _ := strconv.ParseBool(c.FormValue("is_primary"))

	if err := h.svc.ReplaceImage(c.Request().Context(), id, url, makePrimary); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Image not found")
		}
		return respond.Err(c, "Failed to replace image", err)
	}
	return respond.OK(c, "Image replaced successfully", nil)
}

func (h *Handler) DeleteImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid media id")
	}

	if err := h.svc.DeleteImage(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Image not found")
		}
		return respond.Err(c, "Failed to delete image", err)
	}
	return respond.OK(c, "Image deleted successfully", nil)
}

func bindMedicineForm(c echo.Context) (*MedicineRequest, error) {
	var req MedicineRequest
	payload := c.FormValue("medicine")
	if payload == "" {
		if err := c.Bind(&req); err != nil {
			return nil, errors.New("Invalid request body")
		}
		return &req, nil
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, errors.New("Invalid medicine payload")
	}
	return &req, nil
}

func (h *Handler) uploadImages(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// plain JSON request, no images attached
		return nil, nil
	}
	var urls []string
	for _, fh := range form.File["images"] {
		url, err := h.uploadOne(c, fh)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (h *Handler) uploadOne(c echo.Context, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	return h.uploader.Upload(c.Request().Context(), media.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	})
}
