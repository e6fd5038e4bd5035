package doctor

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caremarket/caremarket/internal/domain/review"
	"github.com/caremarket/caremarket/internal/domain/scheduling"
	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/media"
	"github.com/caremarket/caremarket/internal/platform/respond"
	"github.com/caremarket/caremarket/pkg/pagination"
)

type Handler struct {
	svc      *Service
	slots    *scheduling.Service
	reviews  *review.Service
	uploader media.Uploader
}

func NewHandler(svc *Service, slots *scheduling.Service, reviews *review.Service, uploader media.Uploader) *Handler {
	return &Handler{svc: svc, slots: slots, reviews: reviews, uploader: uploader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors", h.List)
	api.GET("/doctors/:id", h.Get)

	admin := api.Group("/admin/doctors", auth.RequireRole(auth.RoleAdmin))
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
	admin.POST("/:id/photo", h.UploadPhoto)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	d, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return respond.Fail(c, "Doctor with this email already exists")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Doctor created successfully", d)
}

// Get returns the doctor profile with reviews attached. When a date query
// parameter is present the response also carries the day's slot availability;
// without a date the slot list is empty.
func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid doctor id")
	}
	ctx := c.Request().Context()

	d, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Doctor not found")
		}
		return respond.Err(c, "Failed to fetch doctor", err)
	}

	reviews, _, err := h.reviews.ListByDoctor(ctx, id, pagination.DefaultLimit, 0)
	if err != nil {
		return respond.Err(c, "Failed to fetch reviews", err)
	}

	slots := []scheduling.DaySlot{}
	if date := c.QueryParam("date"); date != "" {
		slots, err = h.slots.ResolveDay(ctx, id, date)
		if err != nil {
			if errors.Is(err, scheduling.ErrInvalidDate) {
				return respond.Fail(c, "Invalid appointment_date format. Use YYYY-MM-DD")
			}
			return respond.Err(c, "Failed to fetch slots", err)
		}
	}

	return respond.OK(c, "Doctor fetched successfully", map[string]interface{}{
		"doctor":  d,
		"reviews": reviews,
		"slots":   slots,
	})
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("specialization"), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, "Failed to fetch doctors", err)
	}
	return respond.OK(c, "Doctors fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid doctor id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	d, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.Fail(c, "Doctor not found")
		case errors.Is(err, ErrEmailTaken):
			return respond.Fail(c, "Doctor with this email already exists")
		default:
			return respond.Fail(c, err.Error())
		}
	}
	return respond.OK(c, "Doctor updated successfully", d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid doctor id")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Doctor not found")
		}
		return respond.Err(c, "Failed to delete doctor", err)
	}
	return respond.OK(c, "Doctor deleted successfully", nil)
}

// UploadPhoto stores a profile photo and attaches its URL to the doctor.
func (h *Handler) UploadPhoto(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid doctor id")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return respond.Fail(c, "photo file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return respond.Err(c, "Failed to read upload", err)
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request().Context(), media.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		return respond.Fail(c, err.Error())
	}

	d, err := h.svc.Update(c.Request().Context(), id, UpdateRequest{Photo: &url})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Doctor not found")
		}
		return respond.Err(c, "Failed to update doctor", err)
	}
	return respond.OK(c, "Photo uploaded successfully", d)
}
