package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"
)

var ctx = context.Background()

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeRecords struct {
	mu        sync.Mutex
	nextID    uint
	records   map[uint]models.MedicalRecord
	createErr error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{nextID: 1, records: map[uint]models.MedicalRecord{}}
}

func (f *fakeRecords) Create(_ context.Context, record *models.MedicalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.records {
		if r.AppointmentID == record.AppointmentID {
			return repository.ErrDuplicate
		}
	}
	record.ID = f.nextID
	f.nextID++
	stored := *record
	stored.Appointment, stored.Doctor, stored.Patient = nil, nil, nil
	f.records[record.ID] = stored
	return nil
}

func (f *fakeRecords) FindByID(_ context.Context, id uint) (*models.MedicalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRecords) FindByAppointmentID(_ context.Context, appointmentID uint) (*models.MedicalRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.AppointmentID == appointmentID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRecords) ExistsByAppointmentID(ctx context.Context, appointmentID uint) (bool, error) {
	_, err := f.FindByAppointmentID(ctx, appointmentID)
	return err == nil, nil
}

func (f *fakeRecords) UpdateClinical(_ context.Context, record *models.MedicalRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[record.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Diagnosis = record.Diagnosis
	stored.Treatment = record.Treatment
	stored.Medication = record.Medication
	stored.Notes = record.Notes
	stored.Status = record.Status
	stored.UpdatedAt = record.UpdatedAt
	f.records[record.ID] = stored
	return nil
}

func (f *fakeRecords) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRecords) filter(match func(models.MedicalRecord) bool) []models.MedicalRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MedicalRecord
	for id := uint(1); id < f.nextID; id++ {
		if r, ok := f.records[id]; ok && match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeRecords) ListByDoctorID(_ context.Context, doctorID uint) ([]models.MedicalRecord, error) {
	return f.filter(func(r models.MedicalRecord) bool { return r.DoctorID == doctorID }), nil
}

func (f *fakeRecords) ListByPatientID(_ context.Context, patientID uint) ([]models.MedicalRecord, error) {
	return f.filter(func(r models.MedicalRecord) bool { return r.PatientID == patientID }), nil
}

func (f *fakeRecords) ListByDoctorAndPatient(_ context.Context, doctorID, patientID uint) ([]models.MedicalRecord, error) {
	return f.filter(func(r models.MedicalRecord) bool { return r.DoctorID == doctorID && r.PatientID == patientID }), nil
}

func (f *fakeRecords) ListByStatus(_ context.Context, status int) ([]models.MedicalRecord, error) {
	return f.filter(func(r models.MedicalRecord) bool { return r.Status == status }), nil
}

type fakeDoctors struct {
	mu         sync.Mutex
	nextID     uint
	doctors    map[uint]models.Doctor
	updateErr  error
	lastFilter repository.DoctorFilter
}

func newFakeDoctors(doctors ...models.Doctor) *fakeDoctors {
	f := &fakeDoctors{nextID: 1, doctors: map[uint]models.Doctor{}}
	for _, d := range doctors {
		f.doctors[d.ID] = d
		if d.ID >= f.nextID {
			f.nextID = d.ID + 1
		}
	}
	return f
}

func (f *fakeDoctors) Create(_ context.Context, doctor *models.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.UserID == doctor.UserID {
			return repository.ErrDuplicate
		}
	}
	doctor.ID = f.nextID
	f.nextID++
	f.doctors[doctor.ID] = cloneDoctor(*doctor)
	return nil
}

func (f *fakeDoctors) FindByID(_ context.Context, id uint) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d = cloneDoctor(d)
	return &d, nil
}

func (f *fakeDoctors) FindByUserID(_ context.Context, userID uint) (*models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.UserID == userID {
			d = cloneDoctor(d)
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDoctors) Update(_ context.Context, doctor *models.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.doctors[doctor.ID] = cloneDoctor(*doctor)
	return nil
}

func (f *fakeDoctors) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.doctors, id)
	return nil
}

func (f *fakeDoctors) sorted(match func(models.Doctor) bool) []models.Doctor {
	var out []models.Doctor
	for id := uint(1); id < f.nextID; id++ {
		if d, ok := f.doctors[id]; ok && match(d) {
			out = append(out, cloneDoctor(d))
		}
	}
	return out
}

func (f *fakeDoctors) ListByDepartment(_ context.Context, departmentID uint) ([]models.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(d models.Doctor) bool { return d.HasDepartment(departmentID) }), nil
}

func (f *fakeDoctors) Search(_ context.Context, filter repository.DoctorFilter, offset, limit int) ([]models.Doctor, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter

	matches := f.sorted(func(d models.Doctor) bool {
		if filter.Name != "" && !strings.Contains(d.Name, filter.Name) {
			return false
		}
		if filter.Status != nil && d.Status != *filter.Status {
			return false
		}
		if len(filter.DepartmentIDs) > 0 {
			linked := false
			for _, id := range filter.DepartmentIDs {
				linked = linked || d.HasDepartment(id)
			}
			return linked
		}
		return true
	})

	total := int64(len(matches))
	if offset >= len(matches) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}

func cloneDoctor(d models.Doctor) models.Doctor {
	d.Departments = append([]models.Department(nil), d.Departments...)
	return d
}

type fakeDepartments map[uint]models.Department

func (f fakeDepartments) FindByID(_ context.Context, id uint) (*models.Department, error) {
	d, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

type fakeAppointments map[uint]models.Appointment

func (f fakeAppointments) FindByID(_ context.Context, id uint) (*models.Appointment, error) {
	a, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[uint]models.User
	updateErr error
	deleteErr error
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[uint]models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint, profile models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if profile.Name != "" {
		u.Name = profile.Name
	}
	if profile.Username != "" {
		u.Username = profile.Username
	}
	if profile.Email != "" {
		u.Email = profile.Email
	}
	if profile.Phone != "" {
		u.Phone = profile.Phone
	}
	f.users[id] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeSyncTasks struct {
	mu     sync.Mutex
	nextID uint
	tasks  map[uint]models.UserSyncTask
}

func newFakeSyncTasks() *fakeSyncTasks {
	return &fakeSyncTasks{nextID: 1, tasks: map[uint]models.UserSyncTask{}}
}

func (f *fakeSyncTasks) Create(_ context.Context, task *models.UserSyncTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.nextID
	f.nextID++
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeSyncTasks) FindByID(_ context.Context, id uint) (*models.UserSyncTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (f *fakeSyncTasks) Update(_ context.Context, task *models.UserSyncTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeSyncTasks) list(match func(models.UserSyncTask) bool, limit int) []models.UserSyncTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserSyncTask
	for id := uint(1); id < f.nextID; id++ {
		if limit > 0 && len(out) == limit {
			break
		}
		if t, ok := f.tasks[id]; ok && match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeSyncTasks) ListByStatus(_ context.Context, status string) ([]models.UserSyncTask, error) {
	return f.list(func(t models.UserSyncTask) bool { return t.Status == status }, 0), nil
}

func (f *fakeSyncTasks) ListStalePending(_ context.Context, before time.Time, limit int) ([]models.UserSyncTask, error) {
	return f.list(func(t models.UserSyncTask) bool {
		return t.Status == models.SyncStatusPending && t.CreatedAt.Before(before)
	}, limit), nil
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) Record(_ context.Context, entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, entry.Action)
	return nil
}
