package scheduling

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
	patient := api.Group("/appointments", auth.RequireRole(auth.RolePatient))
	patient.POST("", h.Book)
	patient.GET("", h.ListMine)
	patient.PUT("/:id", h.Update)
	patient.PUT("/:id/cancel", h.Cancel)

	admin := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/slots/generate", h.GenerateSlots)
	admin.PUT("/slots/:id/active", h.SetSlotActive)
	admin.GET("/appointments", h.ListAll)
	admin.PUT("/appointments/:id/complete", h.Complete)
}

// RegisterDoctorRoutes attaches the public availability endpoint under the
// doctor resource.
func (h *Handler) RegisterDoctorRoutes(api *echo.Group) {
	api.GET("/doctors/:id/slots", h.DoctorDaySlots)
}

func (h *Handler) GenerateSlots(c echo.Context) error {
	var req GenerateSlotsRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}
	created, err := h.svc.GenerateSlots(c.Request().Context(), req)
	if err != nil {
		return respond.Fail(c, err.Error())
	}
	return respond.OK(c, "Slots generated successfully", map[string]int{"created": created})
}

func (h *Handler) SetSlotActive(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid slot id")
	}
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}
	if err := h.svc.SetSlotActive(c.Request().Context(), id, req.IsActive); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respond.Fail(c, "Slot not found")
		}
		return respond.Err(c, "Failed to update slot", err)
	}
	return respond.OK(c, "Slot updated successfully", nil)
}

func (h *Handler) DoctorDaySlots(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid doctor id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return respond.Fail(c, "date query parameter is required")
	}

	slots, err := h.svc.ResolveDay(c.Request().Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			return respond.Fail(c, "Invalid appointment_date format. Use YYYY-MM-DD")
		}
		return respond.Err(c, "Failed to fetch slots", err)
	}
	return respond.OK(c, "Slots fetched successfully", slots)
}

func (h *Handler) Book(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	appt, err := h.svc.Book(c.Request().Context(), auth.MustActor(c), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDate):
			return respond.Fail(c, "Invalid appointment_date format. Use YYYY-MM-DD")
		case errors.Is(err, ErrPastDate):
			return respond.Fail(c, "You cannot book an appointment for a past date")
		case errors.Is(err, ErrSlotInactive):
			return respond.Fail(c, "Invalid or inactive slot")
		case errors.Is(err, ErrSlotTaken):
			return respond.Fail(c, "This slot is already booked on this date")
		default:
			return respond.Err(c, "Failed to book appointment", err)
		}
	}
	return respond.OK(c, "Appointment booked successfully", appt)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid appointment id")
	}
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return respond.Fail(c, "Invalid request body")
	}

	appt, err := h.svc.Update(c.Request().Context(), auth.MustActor(c), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.Fail(c, "Appointment not found")
		case errors.Is(err, ErrAlreadyCancelled):
			return respond.Fail(c, "Appointment already cancelled")
		case errors.Is(err, ErrInvalidDate):
			return respond.Fail(c, "Invalid appointment_date format. Use YYYY-MM-DD")
		case errors.Is(err, ErrPastDate):
			return respond.Fail(c, "You cannot book an appointment for a past date")
		case errors.Is(err, ErrSlotInactive):
			return respond.Fail(c, "Invalid or inactive slot")
		case errors.Is(err, ErrSlotTaken):
			return respond.Fail(c, "This slot is already booked")
		default:
			return respond.Err(c, "Failed to update appointment", err)
		}
	}
	return respond.OK(c, "Appointment updated successfully", appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid appointment id")
	}

	if err := h.svc.Cancel(c.Request().Context(), auth.MustActor(c), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.Fail(c, "Appointment not found")
		case errors.Is(err, ErrAlreadyCancelled):
			return respond.Fail(c, "Appointment already cancelled")
		default:
			return respond.Err(c, "Failed to cancel appointment", err)
		}
	}
	return respond.OK(c, "Appointment cancelled successfully", nil)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respond.Fail(c, "Invalid appointment id")
	}

	if err := h.svc.Complete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return respond.Fail(c, "Appointment not found")
		case errors.Is(err, ErrAlreadyCancelled):
			return respond.Fail(c, "Appointment already cancelled")
		default:
			return respond.Err(c, "Failed to complete appointment", err)
		}
	}
	return respond.OK(c, "Appointment completed successfully", nil)
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), auth.MustActor(c), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, "Failed to fetch appointments", err)
	}
	return respond.OK(c, "Appointments fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListAll(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAll(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, "Failed to fetch appointments", err)
	}
	return respond.OK(c, "Appointments fetched successfully",
		pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
