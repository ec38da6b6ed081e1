package scheduling

import (
	"context"
	"sync"

	appointmentRepo "glowbook/database/repository/appointment"
	scheduleRepo "glowbook/database/repository/schedule"
	"glowbook/models"
)

// fakeScheduleRepo is an in-memory ScheduleRepository.
type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*models.Schedule
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[string]*models.Schedule)}
}

func (r *fakeScheduleRepo) Get(_ context.Context, providerID string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[providerID]
	if !ok {
		return nil, scheduleRepo.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeScheduleRepo) GetOrCreate(ctx context.Context, providerID string) (*models.Schedule, error) {
	if s, err := r.Get(ctx, providerID); err == nil {
		return s, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.schedules[providerID]; ok {
		copied := *s
		return &copied, nil
	}
	seed := models.DefaultSchedule(providerID, "UTC")
	r.schedules[providerID] = seed
	copied := *seed
	return &copied, nil
}

func (r *fakeScheduleRepo) Replace(_ context.Context, schedule *models.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule.Version++
	copied := *schedule
	r.schedules[schedule.ProviderID] = &copied
	return nil
}

// fakeAppointmentRepo is an in-memory AppointmentRepository. CreateIfFree
// holds the repo lock across read-guard-insert, mirroring the serializable
// transaction of the mongo implementation.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[string]*models.Appointment)}
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) ListActive(_ context.Context, providerID, date string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(providerID, date, date), nil
}

func (r *fakeAppointmentRepo) ListActiveRange(_ context.Context, providerID, from, to string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(providerID, from, to), nil
}

func (r *fakeAppointmentRepo) ListActiveFrom(_ context.Context, providerID, from string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(providerID, from, ""), nil
}

// activeLocked filters the active set; an empty to means unbounded above.
func (r *fakeAppointmentRepo) activeLocked(providerID, from, to string) []models.Appointment {
	var out []models.Appointment
	for _, a := range r.appts {
		if a.ProviderID == providerID && a.Date >= from && (to == "" || a.Date <= to) && a.Status.Occupies() {
			out = append(out, *a)
		}
	}
	return out
}

func (r *fakeAppointmentRepo) CreateIfFree(_ context.Context, appt *models.Appointment, guard appointmentRepo.Guard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := guard(r.activeLocked(appt.ProviderID, appt.Date, appt.Date)); err != nil {
		return err
	}
	copied := *appt
	r.appts[appt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id string, allowedFrom []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	allowed := false
	for _, s := range allowedFrom {
		if a.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, appointmentRepo.ErrBadState
	}
	a.Status = to
	copied := *a
	return &copied, nil
}
