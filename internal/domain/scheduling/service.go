package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caremarket/caremarket/internal/platform/auth"
)

// Sentinel errors returned by the booking engine. Handlers map these to the
// client-facing messages.
var (
	ErrInvalidDate      = errors.New("invalid appointment date")
	ErrPastDate         = errors.New("appointment date is in the past")
	ErrSlotInactive     = errors.New("slot is invalid or inactive")
	ErrSlotTaken        = errors.New("slot is already booked for this date")
	ErrNotFound         = errors.New("appointment not found")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
)

type Service struct {
	slots        SlotRepository
	appointments AppointmentRepository
}

func NewService(slots SlotRepository, appointments AppointmentRepository) *Service {
	return &Service{slots: slots, appointments: appointments}
}

// GenerateSlots bulk-creates hourly slot templates for a doctor across the
// given weekdays. Hours cover [startHour, endHour] inclusive. Re-running with
// the same arguments re-activates existing templates instead of duplicating
// them. Returns the number of newly created templates.
func (s *Service) GenerateSlots(ctx context.Context, req GenerateSlotsRequest) (int, error) {
	if req.DoctorID <= 0 {
		return 0, fmt.Errorf("doctor_id is required")
	}
	if len(req.Days) == 0 {
		return 0, fmt.Errorf("days is required")
	}
	for _, d := range req.Days {
		if d < 0 || d > 6 {
			return 0, fmt.Errorf("invalid day of week: %d", d)
		}
	}
	if req.StartHour < 0 || req.StartHour > 23 {
		return 0, fmt.Errorf("invalid start_hour: %d", req.StartHour)
	}
	if req.EndHour < 0 || req.EndHour > 23 {
		return 0, fmt.Errorf("invalid end_hour: %d", req.EndHour)
	}
	if req.StartHour > req.EndHour {
		return 0, fmt.Errorf("start_hour must not be after end_hour")
	}

	created := 0
	for _, day := range req.Days {
		for hour := req.StartHour; hour <= req.EndHour; hour++ {
			inserted, err := s.slots.Upsert(ctx, req.DoctorID, day, FormatSlotTime(hour))
			if err != nil {
				return created, err
			}
			if inserted {
				created++
			}
		}
	}
	return created, nil
}

// ResolveDay returns the doctor's slots for a calendar date, each marked
// available or booked. Slots are ordered by time of day.
func (s *Service) ResolveDay(ctx context.Context, doctorID int64, date string) ([]DaySlot, error) {
	if doctorID <= 0 {
		return nil, fmt.Errorf("doctor_id is required")
	}
	_, weekday, err := ParseAppointmentDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	templates, err := s.slots.ListActiveByDoctorDay(ctx, doctorID, int(weekday))
	if err != nil {
		return nil, err
	}

	booked, err := s.appointments.BookedSlotIDs(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	out := make([]DaySlot, 0, len(templates))
	for _, t := range templates {
		status := SlotAvailable
		if booked[t.ID] {
			status = SlotBooked
		}
		out = append(out, DaySlot{
			SlotID:    t.ID,
			SlotTime:  t.SlotTime,
			DayOfWeek: t.DayOfWeek,
			Status:    status,
		})
	}
	return out, nil
}

// Book creates a scheduled appointment for the actor. The date must be today
// or later, the slot must be active, and the slot must not already hold a
// scheduled appointment for that date. The doctor is taken from the slot
// template, not from the request.
func (s *Service) Book(ctx context.Context, actor auth.Actor, req BookRequest) (*Appointment, error) {
	if req.SlotID <= 0 || req.AppointmentDate == "" {
		return nil, fmt.Errorf("slot_id and appointment_date are required")
	}

	day, _, err := ParseAppointmentDate(req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if isPastDate(day) {
		return nil, ErrPastDate
	}

	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil || slot == nil || !slot.IsActive {
		return nil, ErrSlotInactive
	}

	appt := &Appointment{
		PatientID:       actor.ID,
		DoctorID:        slot.DoctorID,
		SlotID:          req.SlotID,
		AppointmentDate: day.Format(dateLayout),
		Status:          StatusScheduled,
		Notes:           req.Notes,
	}
	if err := s.appointments.Insert(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Update moves an existing appointment to a new doctor, slot, or date. The
// actor must own the appointment unless they are an admin. Conflict checks
// ignore the appointment's own row, so re-submitting unchanged details is
// not an error.
func (s *Service) Update(ctx context.Context, actor auth.Actor, apptID int64, req BookRequest) (*Appointment, error) {
	if req.DoctorID <= 0 || req.SlotID <= 0 || req.AppointmentDate == "" {
		return nil, fmt.Errorf("doctor_id, slot_id and appointment_date are required")
	}

	appt, err := s.ownedAppointment(ctx, actor, apptID)
	if err != nil {
		return nil, err
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	day, _, err := ParseAppointmentDate(req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if isPastDate(day) {
		return nil, ErrPastDate
	}

	if err := s.checkSlot(ctx, req.DoctorID, req.SlotID); err != nil {
		return nil, err
	}

	taken, err := s.appointments.HasConflict(ctx, req.SlotID, day.Format(dateLayout), appt.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	appt.DoctorID = req.DoctorID
	appt.SlotID = req.SlotID
	appt.AppointmentDate = day.Format(dateLayout)
	if req.Notes != nil {
		appt.Notes = req.Notes
	}
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel marks an appointment cancelled, freeing its slot for that date.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, apptID int64) error {
	appt, err := s.ownedAppointment(ctx, actor, apptID)
	if err != nil {
		return err
	}
	if appt.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	return s.appointments.UpdateStatus(ctx, appt.ID, StatusCancelled)
}

// ListByPatient returns the actor's own appointments, newest first.
func (s *Service) ListByPatient(ctx context.Context, actor auth.Actor, limit, offset int) ([]*AppointmentDetail, int, error) {
	return s.appointments.ListByPatient(ctx, actor.ID, limit, offset)
}

// ListAll returns every appointment, optionally filtered by status. Admin
// only; enforced at the route level.
func (s *Service) ListAll(ctx context.Context, status string, limit, offset int) ([]*AppointmentDetail, int, error) {
	if status != "" && status != StatusScheduled && status != StatusCompleted && status != StatusCancelled {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.appointments.ListAll(ctx, status, limit, offset)
}

// Complete marks a scheduled appointment completed. Admin only.
func (s *Service) Complete(ctx context.Context, apptID int64) error {
	appt, err := s.appointments.GetByID(ctx, apptID)
	if err != nil {
		return err
	}
	if appt.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	return s.appointments.UpdateStatus(ctx, appt.ID, StatusCompleted)
}

// SetSlotActive toggles a slot template's availability flag. Admin only.
func (s *Service) SetSlotActive(ctx context.Context, slotID int64, active bool) error {
	return s.slots.SetActive(ctx, slotID, active)
}

func (s *Service) ownedAppointment(ctx context.Context, actor auth.Actor, apptID int64) (*Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && appt.PatientID != actor.ID {
		return nil, ErrNotFound
	}
	return appt, nil
}

func (s *Service) checkSlot(ctx context.Context, doctorID, slotID int64) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil || slot == nil || !slot.IsActive || slot.DoctorID != doctorID {
		return ErrSlotInactive
	}
	return nil
}

func isPastDate(day time.Time) bool {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}
