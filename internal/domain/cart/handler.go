package cart

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := api.Group("/cart", auth.RequireRole(auth.RolePatient))
	patient.POST("", h.Add)
	patient.GET("", h.List)
	patient.PUT("/:id", h.UpdateQuantity)
	patient.DELETE("/:id", h.Remove)
}

func (h *Handler) Add(c echo.Context) error {
	var req AddRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	item, err := h.svc.Add(c.Request().Context(), auth.MustActor(c), req)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return respond.Fail(c, "Product not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Item added to cart successfully", item)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), auth.MustActor(c))
	if err != nil {
		return respond.Err(c, "Failed to fetch cart", err)
	}
	if items == nil {
		items = []*ItemDetail{}
	}
	return respond.OK(c, "Cart fetched successfully", items)
}

func (h *Handler) UpdateQuantity(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid cart item id")
	}
	var req UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	item, err := h.svc.UpdateQuantity(c.Request().Context(), auth.MustActor(c), id, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Cart item not found")
		}
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Cart item updated successfully", item)
}

func (h *Handler) Remove(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid cart item id")
	}

	if err := h.svc.Remove(c.Request().Context(), auth.MustActor(c), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Cart item not found")
		}
		return respond.Err(c, "Failed to remove cart item", err)
	}
	return respond.OK(c, "Item removed from cart successfully", nil)
}
