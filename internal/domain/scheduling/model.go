package scheduling

import (
	"fmt"
	"time"
)

// SlotTemplate maps to the slot_times table. A template is a weekly-recurring
// bookable hour for one doctor, keyed by (doctor_id, day_of_week, slot_time).
type SlotTemplate struct {
	ID        int64     `db:"slot_id" json:"slot_id"`
	DoctorID  int64     `db:"doctor_id" json:"doctor_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	SlotTime  string    `db:"slot_time" json:"slot_time"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID              int64     `db:"appointment_id" json:"appointment_id"`
	PatientID       int64     `db:"patient_id" json:"patient_id"`
	DoctorID        int64     `db:"doctor_id" json:"doctor_id"`
	SlotID          int64     `db:"slot_id" json:"slot_id"`
	AppointmentDate string    `db:"appointment_date" json:"appointment_date"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentDetail is an Appointment joined with doctor and slot columns for
// listing endpoints.
type AppointmentDetail struct {
	Appointment
	DoctorName string `db:"doctor_name" json:"doctor_name"`
	SlotTime   string `db:"slot_time" json:"slot_time"`
	DayOfWeek  int    `db:"day_of_week" json:"day_of_week"`
}

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// DaySlot is one resolved entry in a doctor's day view: the template plus its
// availability for the requested date.
type DaySlot struct {
	SlotID    int64  `json:"slot_id"`
	SlotTime  string `json:"slot_time"`
	DayOfWeek int    `json:"day_of_week"`
	Status    string `json:"status"`
}

// DaySlot statuses.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

// GenerateSlotsRequest is the admin payload for bulk slot generation.
type GenerateSlotsRequest struct {
	DoctorID  int64 `json:"doctor_id"`
	Days      []int `json:"days"`
	StartHour int   `json:"start_hour"`
	EndHour   int   `json:"end_hour"`
}

// BookRequest is the patient payload for creating or moving an appointment.
type BookRequest struct {
	DoctorID        int64   `json:"doctor_id"`
	SlotID          int64   `json:"slot_id"`
	AppointmentDate string  `json:"appointment_date"`
	Notes           *string `json:"notes,omitempty"`
}

// FormatSlotTime renders an hour-of-day in the canonical slot_time form,
// e.g. 9 -> "9:00:00". Hours are not zero padded.
func FormatSlotTime(hour int) string {
	return fmt.Sprintf("%d:00:00", hour)
}

// dateLayout is the only accepted appointment date format.
const dateLayout = "2006-01-02"

// ParseAppointmentDate parses an appointment date and returns its weekday
// (0 = Sunday). Timestamps with a time component are truncated to the date.
func ParseAppointmentDate(date string) (time.Time, time.Weekday, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		t, err2 := time.Parse(time.RFC3339, date)
		if err2 != nil {
			return time.Time{}, 0, err
		}
		d = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return d, d.Weekday(), nil
}
