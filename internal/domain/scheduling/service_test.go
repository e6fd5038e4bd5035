package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caremarket/caremarket/internal/platform/auth"
)

// ---- in-memory repositories ----

type slotKey struct {
	doctorID  int64
	dayOfWeek int
	slotTime  string
}

type mockSlotRepo struct {
	nextID int64
	byKey  map[slotKey]*SlotTemplate
	byID   map[int64]*SlotTemplate
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{
		nextID: 1,
		byKey:  make(map[slotKey]*SlotTemplate),
		byID:   make(map[int64]*SlotTemplate),
	}
}

func (m *mockSlotRepo) Upsert(_ context.Context, doctorID int64, dayOfWeek int, slotTime string) (bool, error) {
	key := slotKey{doctorID, dayOfWeek, slotTime}
	if existing, ok := m.byKey[key]; ok {
		existing.IsActive = true
		return false, nil
	}
	s := &SlotTemplate{
		ID:        m.nextID,
		DoctorID:  doctorID,
		DayOfWeek: dayOfWeek,
		SlotTime:  slotTime,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.byKey[key] = s
	m.byID[s.ID] = s
	return true, nil
}

func (m *mockSlotRepo) GetByID(_ context.Context, slotID int64) (*SlotTemplate, error) {
	s, ok := m.byID[slotID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return s, nil
}

func (m *mockSlotRepo) ListActiveByDoctorDay(_ context.Context, doctorID int64, dayOfWeek int) ([]*SlotTemplate, error) {
	var out []*SlotTemplate
	for hour := 0; hour < 24; hour++ {
		key := slotKey{doctorID, dayOfWeek, FormatSlotTime(hour)}
		if s, ok := m.byKey[key]; ok && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSlotRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*SlotTemplate, error) {
	var out []*SlotTemplate
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			key := slotKey{doctorID, day, FormatSlotTime(hour)}
			if s, ok := m.byKey[key]; ok {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (m *mockSlotRepo) SetActive(_ context.Context, slotID int64, active bool) error {
	s, ok := m.byID[slotID]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = active
	return nil
}

type mockApptRepo struct {
	nextID int64
	byID   map[int64]*Appointment
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{nextID: 1, byID: make(map[int64]*Appointment)}
}

func (m *mockApptRepo) Insert(_ context.Context, a *Appointment) error {
	for _, other := range m.byID {
		if other.SlotID == a.SlotID && other.AppointmentDate == a.AppointmentDate && other.Status == StatusScheduled {
			return ErrSlotTaken
		}
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockApptRepo) Update(_ context.Context, a *Appointment) error {
	stored, ok := m.byID[a.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.byID {
		if id != a.ID && other.SlotID == a.SlotID && other.AppointmentDate == a.AppointmentDate && other.Status == StatusScheduled {
			return ErrSlotTaken
		}
	}
	stored.DoctorID = a.DoctorID
	stored.SlotID = a.SlotID
	stored.AppointmentDate = a.AppointmentDate
	stored.Notes = a.Notes
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockApptRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	a, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockApptRepo) BookedSlotIDs(_ context.Context, doctorID int64, date string) (map[int64]bool, error) {
	booked := make(map[int64]bool)
	for _, a := range m.byID {
		if a.DoctorID == doctorID && a.AppointmentDate == date && a.Status == StatusScheduled {
			booked[a.SlotID] = true
		}
	}
	return booked, nil
}

func (m *mockApptRepo) HasConflict(_ context.Context, slotID int64, date string, excludeID int64) (bool, error) {
	for id, a := range m.byID {
		if id != excludeID && a.SlotID == slotID && a.AppointmentDate == date && a.Status == StatusScheduled {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApptRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*AppointmentDetail, int, error) {
	var out []*AppointmentDetail
	for _, a := range m.byID {
		if a.PatientID == patientID {
			out = append(out, &AppointmentDetail{Appointment: *a})
		}
	}
	return out, len(out), nil
}

func (m *mockApptRepo) ListAll(_ context.Context, status string, limit, offset int) ([]*AppointmentDetail, int, error) {
	var out []*AppointmentDetail
	for _, a := range m.byID {
		if status == "" || a.Status == status {
			out = append(out, &AppointmentDetail{Appointment: *a})
		}
	}
	return out, len(out), nil
}

// ---- helpers ----

func newTestService() (*Service, *mockSlotRepo, *mockApptRepo) {
	slots := newMockSlotRepo()
	appts := newMockApptRepo()
	return NewService(slots, appts), slots, appts
}

// nextDate returns the next future calendar date falling on the given
// weekday, formatted YYYY-MM-DD.
func nextDate(weekday time.Weekday) string {
	d := time.Now().UTC().AddDate(0, 0, 1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

var patient = auth.Actor{ID: 100, Role: auth.RolePatient}
var admin = auth.Actor{ID: 1, Role: auth.RoleAdmin}

// ---- slot generation ----

func TestGenerateSlots(t *testing.T) {
	svc, slots, _ := newTestService()
	ctx := context.Background()

	created, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1, 3}, StartHour: 9, EndHour: 10,
	})
	if err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	if created != 4 {
		t.Errorf("expected 4 slots created, got %d", created)
	}

	monday, err := slots.ListActiveByDoctorDay(ctx, 7, 1)
	if err != nil {
		t.Fatalf("ListActiveByDoctorDay() error: %v", err)
	}
	if len(monday) != 2 {
		t.Fatalf("expected 2 monday slots, got %d", len(monday))
	}
	if monday[0].SlotTime != "9:00:00" || monday[1].SlotTime != "10:00:00" {
		t.Errorf("unexpected slot times: %s, %s", monday[0].SlotTime, monday[1].SlotTime)
	}
}

func TestGenerateSlots_Idempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := GenerateSlotsRequest{DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 12}
	if _, err := svc.GenerateSlots(ctx, req); err != nil {
		t.Fatalf("first GenerateSlots() error: %v", err)
	}

	created, err := svc.GenerateSlots(ctx, req)
	if err != nil {
		t.Fatalf("second GenerateSlots() error: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 new slots on rerun, got %d", created)
	}
}

func TestSetSlotActive(t *testing.T) {
	svc, slots, _ := newTestService()
	ctx := context.Background()

	req := GenerateSlotsRequest{DoctorID: 7, Days: []int{2}, StartHour: 9, EndHour: 9}
	if _, err := svc.GenerateSlots(ctx, req); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}

	if err := svc.SetSlotActive(ctx, 1, false); err != nil {
		t.Fatalf("SetSlotActive() error: %v", err)
	}
	slot, err := slots.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if slot.IsActive {
		t.Error("slot should be inactive after disabling")
	}

	if err := svc.SetSlotActive(ctx, 1, true); err != nil {
		t.Fatalf("SetSlotActive() error: %v", err)
	}
	slot, _ = slots.GetByID(ctx, 1)
	if !slot.IsActive {
		t.Error("slot should be active after re-enabling")
	}

	if err := svc.SetSlotActive(ctx, 99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetSlotActive(99) = %v, want ErrNotFound", err)
	}
}

func TestGenerateSlots_ReactivatesDisabled(t *testing.T) {
	svc, slots, _ := newTestService()
	ctx := context.Background()

	req := GenerateSlotsRequest{DoctorID: 7, Days: []int{2}, StartHour: 9, EndHour: 10}
	if _, err := svc.GenerateSlots(ctx, req); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	if err := slots.SetActive(ctx, 1, false); err != nil {
		t.Fatalf("SetActive() error: %v", err)
	}

	if _, err := svc.GenerateSlots(ctx, req); err != nil {
		t.Fatalf("GenerateSlots() rerun error: %v", err)
	}
	slot, err := slots.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !slot.IsActive {
		t.Error("expected disabled slot to be reactivated")
	}
}

func TestGenerateSlots_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  GenerateSlotsRequest
	}{
		{"missing doctor", GenerateSlotsRequest{Days: []int{1}, StartHour: 9, EndHour: 10}},
		{"empty days", GenerateSlotsRequest{DoctorID: 7, StartHour: 9, EndHour: 10}},
		{"day out of range", GenerateSlotsRequest{DoctorID: 7, Days: []int{7}, StartHour: 9, EndHour: 10}},
		{"negative day", GenerateSlotsRequest{DoctorID: 7, Days: []int{-1}, StartHour: 9, EndHour: 10}},
		{"reversed hours", GenerateSlotsRequest{DoctorID: 7, Days: []int{1}, StartHour: 11, EndHour: 9}},
		{"start hour out of range", GenerateSlotsRequest{DoctorID: 7, Days: []int{1}, StartHour: 24, EndHour: 25}},
		{"end hour out of range", GenerateSlotsRequest{DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.GenerateSlots(ctx, tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// ---- availability resolution ----

func TestResolveDay(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 11,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}

	date := nextDate(time.Monday)
	slots, err := svc.ResolveDay(ctx, 7, date)
	if err != nil {
		t.Fatalf("ResolveDay() error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Status != SlotAvailable {
			t.Errorf("slot %s: expected available, got %s", s.SlotTime, s.Status)
		}
	}

	// Book the middle slot and resolve again.
	if _, err := svc.Book(ctx, patient, BookRequest{
		DoctorID: 7, SlotID: slots[1].SlotID, AppointmentDate: date,
	}); err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	slots, err = svc.ResolveDay(ctx, 7, date)
	if err != nil {
		t.Fatalf("ResolveDay() after booking error: %v", err)
	}
	if slots[0].Status != SlotAvailable || slots[1].Status != SlotBooked || slots[2].Status != SlotAvailable {
		t.Errorf("unexpected statuses: %s, %s, %s", slots[0].Status, slots[1].Status, slots[2].Status)
	}
}

func TestResolveDay_OtherWeekdayEmpty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}

	slots, err := svc.ResolveDay(ctx, 7, nextDate(time.Tuesday))
	if err != nil {
		t.Fatalf("ResolveDay() error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on a day without templates, got %d", len(slots))
	}
}

func TestResolveDay_InvalidDate(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.ResolveDay(context.Background(), 7, "06/02/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

// ---- booking ----

func TestBook(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}

	date := nextDate(time.Monday)
	appt, err := svc.Book(ctx, patient, BookRequest{SlotID: 1, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if appt.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %s", appt.Status)
	}
	if appt.PatientID != patient.ID {
		t.Errorf("expected patient id %d, got %d", patient.ID, appt.PatientID)
	}
	// The doctor comes from the slot template, not the request body.
	if appt.DoctorID != 7 {
		t.Errorf("expected doctor id 7 from slot template, got %d", appt.DoctorID)
	}
}

func TestBook_DoctorTakenFromTemplate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 9,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 999, SlotID: 1, AppointmentDate: nextDate(time.Monday)})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if appt.DoctorID != 7 {
		t.Errorf("expected doctor id 7, got %d", appt.DoctorID)
	}
}

func TestBook_Errors(t *testing.T) {
	svc, slots, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	tests := []struct {
		name    string
		prep    func(t *testing.T)
		req     BookRequest
		wantErr error
	}{
		{
			name:    "invalid date format",
			req:     BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: "02-06-2025"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "past date",
			req:     BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: "2020-01-06"},
			wantErr: ErrPastDate,
		},
		{
			name:    "unknown slot",
			req:     BookRequest{DoctorID: 7, SlotID: 999, AppointmentDate: date},
			wantErr: ErrSlotInactive,
		},
		{
			name: "inactive slot",
			prep: func(t *testing.T) {
				if err := slots.SetActive(ctx, 1, false); err != nil {
					t.Fatalf("SetActive() error: %v", err)
				}
				t.Cleanup(func() { _ = slots.SetActive(ctx, 1, true) })
			},
			req:     BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date},
			wantErr: ErrSlotInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prep != nil {
				tt.prep(t)
			}
			if _, err := svc.Book(ctx, patient, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Book() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBook_DoubleBookingRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	if _, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date}); err != nil {
		t.Fatalf("first Book() error: %v", err)
	}

	other := auth.Actor{ID: 200, Role: auth.RolePatient}
	if _, err := svc.Book(ctx, other, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date}); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}

	// Same slot a week later is a different date and must succeed.
	later, _, err := ParseAppointmentDate(date)
	if err != nil {
		t.Fatalf("ParseAppointmentDate() error: %v", err)
	}
	nextWeek := later.AddDate(0, 0, 7).Format("2006-01-02")
	if _, err := svc.Book(ctx, other, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: nextWeek}); err != nil {
		t.Errorf("Book() for next week error: %v", err)
	}
}

func TestCancel_FreesSlot(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if err := svc.Cancel(ctx, patient, appt.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	// Cancelled appointments release the slot for rebooking.
	if _, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date}); err != nil {
		t.Errorf("rebooking after cancel error: %v", err)
	}
}

func TestCancel_Errors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	if err := svc.Cancel(ctx, patient, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}

	other := auth.Actor{ID: 200, Role: auth.RolePatient}
	if err := svc.Cancel(ctx, other, appt.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign appointment, got %v", err)
	}

	if err := svc.Cancel(ctx, patient, appt.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if err := svc.Cancel(ctx, patient, appt.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancel_AdminCanCancelAny(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: nextDate(time.Monday)})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	if err := svc.Cancel(ctx, admin, appt.ID); err != nil {
		t.Errorf("admin Cancel() error: %v", err)
	}
}

// ---- rescheduling ----

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 11,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	moved, err := svc.Update(ctx, patient, appt.ID, BookRequest{DoctorID: 7, SlotID: 2, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if moved.SlotID != 2 {
		t.Errorf("expected slot 2, got %d", moved.SlotID)
	}

	// The original slot is free again.
	slots, err := svc.ResolveDay(ctx, 7, date)
	if err != nil {
		t.Fatalf("ResolveDay() error: %v", err)
	}
	if slots[0].Status != SlotAvailable || slots[1].Status != SlotBooked {
		t.Errorf("unexpected statuses after move: %s, %s", slots[0].Status, slots[1].Status)
	}
}

func TestUpdate_SameSlotNotConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 10,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	// Re-submitting the appointment's own slot and date must not count as a
	// conflict with itself.
	if _, err := svc.Update(ctx, patient, appt.ID, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date}); err != nil {
		t.Errorf("Update() to same slot error: %v", err)
	}
}

func TestUpdate_Errors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1}, StartHour: 9, EndHour: 11,
	}); err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	date := nextDate(time.Monday)

	first, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}
	other := auth.Actor{ID: 200, Role: auth.RolePatient}
	second, err := svc.Book(ctx, other, BookRequest{DoctorID: 7, SlotID: 2, AppointmentDate: date})
	if err != nil {
		t.Fatalf("second Book() error: %v", err)
	}

	if _, err := svc.Update(ctx, patient, 999, BookRequest{DoctorID: 7, SlotID: 2, AppointmentDate: date}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
	if _, err := svc.Update(ctx, patient, second.ID, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign appointment, got %v", err)
	}
	if _, err := svc.Update(ctx, patient, first.ID, BookRequest{DoctorID: 7, SlotID: 2, AppointmentDate: date}); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
	if _, err := svc.Update(ctx, patient, first.ID, BookRequest{DoctorID: 7, AppointmentDate: date}); err == nil {
		t.Error("expected validation error for missing slot_id")
	}

	if err := svc.Cancel(ctx, patient, first.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if _, err := svc.Update(ctx, patient, first.ID, BookRequest{DoctorID: 7, SlotID: 1, AppointmentDate: date}); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}
}

// ---- end to end ----

func TestBookingLifecycle(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.GenerateSlots(ctx, GenerateSlotsRequest{
		DoctorID: 7, Days: []int{1, 3}, StartHour: 9, EndHour: 10,
	})
	if err != nil {
		t.Fatalf("GenerateSlots() error: %v", err)
	}
	if created != 4 {
		t.Fatalf("expected 4 slot templates, got %d", created)
	}

	date := nextDate(time.Monday)
	day, err := svc.ResolveDay(ctx, 7, date)
	if err != nil {
		t.Fatalf("ResolveDay() error: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 monday slots, got %d", len(day))
	}

	appt, err := svc.Book(ctx, patient, BookRequest{DoctorID: 7, SlotID: day[0].SlotID, AppointmentDate: date})
	if err != nil {
		t.Fatalf("Book() error: %v", err)
	}

	other := auth.Actor{ID: 200, Role: auth.RolePatient}
	if _, err := svc.Book(ctx, other, BookRequest{DoctorID: 7, SlotID: day[0].SlotID, AppointmentDate: date}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken on double booking, got %v", err)
	}

	if err := svc.Cancel(ctx, patient, appt.ID); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if err := svc.Cancel(ctx, patient, appt.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled on second cancel, got %v", err)
	}

	day, err = svc.ResolveDay(ctx, 7, date)
	if err != nil {
		t.Fatalf("ResolveDay() after cancel error: %v", err)
	}
	if day[0].Status != SlotAvailable {
		t.Errorf("expected slot released after cancel, got %s", day[0].Status)
	}
}
