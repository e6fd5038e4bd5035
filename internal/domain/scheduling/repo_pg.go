package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

const slotCols = `slot_id, doctor_id, day_of_week, slot_time, is_active, created_at`

func scanSlot(row pgx.Row) (*SlotTemplate, error) {
	var s SlotTemplate
	err := row.Scan(&s.ID, &s.DoctorID, &s.DayOfWeek, &s.SlotTime, &s.IsActive, &s.CreatedAt)
	return &s, err
}

func (r *slotRepoPG) Upsert(ctx context.Context, doctorID int64, dayOfWeek int, slotTime string) (bool, error) {
	// xmax = 0 distinguishes a fresh insert from a conflict-update.
	var inserted bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO slot_times (doctor_id, day_of_week, slot_time, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (doctor_id, day_of_week, slot_time)
		DO UPDATE SET is_active = TRUE
		RETURNING (xmax = 0)`,
		doctorID, dayOfWeek, slotTime).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert slot template: %w", err)
	}
	return inserted, nil
}

func (r *slotRepoPG) GetByID(ctx context.Context, slotID int64) (*SlotTemplate, error) {
	return scanSlot(r.pool.QueryRow(ctx, `SELECT `+slotCols+` FROM slot_times WHERE slot_id = $1`, slotID))
}

func (r *slotRepoPG) ListActiveByDoctorDay(ctx context.Context, doctorID int64, dayOfWeek int) ([]*SlotTemplate, error) {
	// slot_time is stored unpadded ("9:00:00"), so plain text ordering would
	// put "10:00:00" first. Ordering by length first restores hour order.
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotCols+` FROM slot_times
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_active = TRUE
		ORDER BY length(slot_time), slot_time`,
		doctorID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

func (r *slotRepoPG) ListByDoctor(ctx context.Context, doctorID int64) ([]*SlotTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotCols+` FROM slot_times
		WHERE doctor_id = $1
		ORDER BY day_of_week, length(slot_time), slot_time`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSlots(rows)
}

func (r *slotRepoPG) SetActive(ctx context.Context, slotID int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE slot_times SET is_active = $2 WHERE slot_id = $1`, slotID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectSlots(rows pgx.Rows) ([]*SlotTemplate, error) {
	var items []*SlotTemplate
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `appointment_id, patient_id, doctor_id, slot_id,
	to_char(appointment_date, 'YYYY-MM-DD'), status, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.SlotID,
		&a.AppointmentDate, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Insert(ctx context.Context, a *Appointment) error {
	// The WHERE NOT EXISTS guard covers the common case; the partial unique
	// index on (slot_id, appointment_date) closes the race between two
	// concurrent inserts.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, slot_id, appointment_date, status, notes)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE slot_id = $3 AND appointment_date = $4 AND status = $7
		)
		RETURNING appointment_id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.SlotID, a.AppointmentDate, a.Status, a.Notes, StatusScheduled).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE appointment_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET doctor_id = $2, slot_id = $3, appointment_date = $4, notes = $5, updated_at = NOW()
		WHERE appointment_id = $1`,
		a.ID, a.DoctorID, a.SlotID, a.AppointmentDate, a.Notes)
	if isUniqueViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET status = $2, updated_at = NOW() WHERE appointment_id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) BookedSlotIDs(ctx context.Context, doctorID int64, date string) (map[int64]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT slot_id FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND status = $3`,
		doctorID, date, StatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	booked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		booked[id] = true
	}
	return booked, rows.Err()
}

func (r *appointmentRepoPG) HasConflict(ctx context.Context, slotID int64, date string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE slot_id = $1 AND appointment_date = $2 AND status = $3 AND appointment_id <> $4
		)`,
		slotID, date, StatusScheduled, excludeID).Scan(&exists)
	return exists, err
}

const apptDetailCols = `a.appointment_id, a.patient_id, a.doctor_id, a.slot_id,
	to_char(a.appointment_date, 'YYYY-MM-DD'), a.status, a.notes, a.created_at, a.updated_at,
	d.name, s.slot_time, s.day_of_week`

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var a AppointmentDetail
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.SlotID,
		&a.AppointmentDate, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&a.DoctorName, &a.SlotTime, &a.DayOfWeek)
	return &a, err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*AppointmentDetail, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+apptDetailCols+`
		FROM appointments a
		JOIN doctors d ON d.doctor_id = a.doctor_id
		JOIN slot_times s ON s.slot_id = a.slot_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC, length(s.slot_time), s.slot_time
		LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectDetails(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListAll(ctx context.Context, status string, limit, offset int) ([]*AppointmentDetail, int, error) {
	where := ``
	var args []interface{}
	idx := 1
	if status != "" {
		where = fmt.Sprintf(` WHERE a.status = $%d`, idx)
		args = append(args, status)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + apptDetailCols + `
		FROM appointments a
		JOIN doctors d ON d.doctor_id = a.doctor_id
		JOIN slot_times s ON s.slot_id = a.slot_id` + where +
		fmt.Sprintf(` ORDER BY a.appointment_date DESC, length(s.slot_time), s.slot_time LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectDetails(rows)
	return items, total, err
}

func collectDetails(rows pgx.Rows) ([]*AppointmentDetail, error) {
	var items []*AppointmentDetail
	for rows.Next() {
		a, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
