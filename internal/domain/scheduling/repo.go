package scheduling

import (
	"context"
)

type SlotRepository interface {
	// Upsert ensures a template row exists for (doctorID, dayOfWeek, slotTime)
	// and re-activates it if it was disabled. Returns true when a new row was
	// inserted.
	Upsert(ctx context.Context, doctorID int64, dayOfWeek int, slotTime string) (bool, error)
	GetByID(ctx context.Context, slotID int64) (*SlotTemplate, error)
	ListActiveByDoctorDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*SlotTemplate, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*SlotTemplate, error)
	SetActive(ctx context.Context, slotID int64, active bool) error
}

type AppointmentRepository interface {
	// Insert books a slot for a date. It returns ErrSlotTaken when another
	// scheduled appointment already holds (slot_id, appointment_date).
	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	// Update moves an appointment to a new doctor/slot/date. It returns
	// ErrSlotTaken on conflict with a different scheduled appointment.
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	// BookedSlotIDs returns slot ids with a scheduled appointment for the
	// doctor on the given date.
	BookedSlotIDs(ctx context.Context, doctorID int64, date string) (map[int64]bool, error)
	// HasConflict reports whether a scheduled appointment other than excludeID
	// holds (slotID, date). Pass excludeID 0 to consider all rows.
	HasConflict(ctx context.Context, slotID int64, date string, excludeID int64) (bool, error)
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*AppointmentDetail, int, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]*AppointmentDetail, int, error)
}
