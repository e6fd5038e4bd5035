package review

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/respond"
	"github.com/caremarket/caremarket/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/reviews", h.ListByDoctor)

	patient := api.Group("/reviews", auth.RequireRole(auth.RolePatient))
	patient.POST("", h.Add)
	patient.PUT("/:id", h.Update)
	patient.DELETE("/:id", h.Delete)
}

func (h *Handler) Add(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	r, err := h.svc.Add(c.Request().Context(), auth.MustActor(c), req)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Review added successfully", r)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid review id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	r, err := h.svc.Update(c.Request().Context(), auth.MustActor(c), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Review not found or not authorized")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Review updated successfully", r)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid review id")
	}

	if err := h.svc.Delete(c.Request().Context(), auth.MustActor(c), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Review not found or not authorized")
		}
		return respond.Err(c, "Failed to delete review", err)
	}
	return respond.OK(c, "Review deleted successfully", nil)
}

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid doctor id")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, "Failed to fetch reviews", err)
	}
	return respond.OK(c, "Reviews fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
