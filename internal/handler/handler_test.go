package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/service"
	"appointment-backend/pkg/pagination"
	"appointment-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRecords struct {
	RecordManager
	create    func(service.MedicalRecordInput) (*service.MedicalRecordResponse, error)
	getByID   func(uint) (*service.MedicalRecordResponse, bool, error)
	delete    func(id, actor uint) error
	byPatient func(uint) ([]service.MedicalRecordResponse, error)
}

func (s *stubRecords) Create(_ context.Context, in service.MedicalRecordInput) (*service.MedicalRecordResponse, error) {
	return s.create(in)
}

func (s *stubRecords) GetByID(_ context.Context, id uint) (*service.MedicalRecordResponse, bool, error) {
	return s.getByID(id)
}

func (s *stubRecords) Delete(_ context.Context, id uint, actor uint) error {
	return s.delete(id, actor)
}

func (s *stubRecords) ListByPatient(_ context.Context, patientID uint) ([]service.MedicalRecordResponse, error) {
	return s.byPatient(patientID)
}

type stubExporter func(doctorID uint, w io.Writer) error

func (f stubExporter) ExportByDoctor(_ context.Context, doctorID uint, w io.Writer) error {
	return f(doctorID, w)
}

type stubDoctors struct {
	DoctorManager
	update  func(uint, service.DoctorInput) (*service.DoctorResponse, error)
	getByID func(uint) (*service.DoctorResponse, error)
	search func(service.DoctorSearch, pagination.Page) (pagination.Result[service.DoctorResponse], error)
}

func (s *stubDoctors) Update(_ context.Context, id uint, in service.DoctorInput) (*service.DoctorResponse, error) {
	return s.update(id, in)
}

func (s *stubDoctors) GetByID(_ context.Context, id uint) (*service.DoctorResponse, error) {
	return s.getByID(id)
}

func (s *stubDoctors) Search(_ context.Context, c service.DoctorSearch, p pagination.Page) (pagination.Result[service.DoctorResponse], error) {
	return s.search(c, p)
}

type stubSyncTasks struct {
	list func(string) ([]models.UserSyncTask, error)
}

func (s *stubSyncTasks) ListByStatus(_ context.Context, status string) ([]models.UserSyncTask, error) {
	return s.list(status)
}

func (s *stubSyncTasks) Retry(_ context.Context, id uint, _ uint) (*models.UserSyncTask, error) {
	return &models.UserSyncTask{ID: id, Status: models.SyncStatusSucceeded}, nil
}

type testServer struct {
	router  *gin.Engine
	jwt     *utils.JWTManager
	records *stubRecords
	doctors *stubDoctors
	tasks   *stubSyncTasks
	export  stubExporter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		jwt:     utils.NewJWTManager("handler-secret", time.Minute, time.Hour),
		records: &stubRecords{},
		doctors: &stubDoctors{},
		tasks:   &stubSyncTasks{},
	}
	exporter := stubExporter(func(doctorID uint, w io.Writer) error { return s.export(doctorID, w) })

	logger := zap.NewNop()
	s.router = NewRouter(Handlers{
		Auth:      NewAuthHandler(nil, time.Hour, false, logger),
		Records:   NewMedicalRecordHandler(s.records, exporter, logger),
		Doctors:   NewDoctorHandler(s.doctors, logger),
		SyncTasks: NewSyncTaskHandler(s.tasks, logger),
	}, s.jwt, nil, logger)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, err := s.jwt.GenerateAccessToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", 0, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestCreateRecord(t *testing.T) {
	s := newTestServer(t)
	s.records.create = func(in service.MedicalRecordInput) (*service.MedicalRecordResponse, error) {
		return &service.MedicalRecordResponse{
			ID:              1,
			AppointmentID:   in.AppointmentID,
			DoctorName:      "Dr. House",
			Diagnosis:       in.Diagnosis,
			Status:          1,
			AppointmentTime: "2024-03-05T09:30:00",
		}, nil
	}

	body := map[string]interface{}{"appointment_id": 10, "doctor_id": 3, "patient_id": 7, "diagnosis": "flu"}

	w := s.do(t, http.MethodPost, "/api/medical-records", 3, models.RoleDoctor, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var record service.MedicalRecordResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &record))
	assert.Equal(t, "flu", record.Diagnosis)
	assert.Equal(t, "2024-03-05T09:30:00", record.AppointmentTime)

	w = s.do(t, http.MethodPost, "/api/medical-records", 7, models.RolePatient, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/medical-records", 0, "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecord_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", &service.Error{Kind: service.KindConflict, Message: "record already exists for appointment 10"}, http.StatusConflict, "record already exists for appointment 10"},
		{"not found", &service.Error{Kind: service.KindNotFound, Message: "doctor 3 not found"}, http.StatusNotFound, "doctor 3 not found"},
		{"invalid", &service.Error{Kind: service.KindInvalidArgument, Message: "appointment_id is required"}, http.StatusBadRequest, "appointment_id is required"},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.records.create = func(service.MedicalRecordInput) (*service.MedicalRecordResponse, error) {
				return nil, tt.err
			}

			w := s.do(t, http.MethodPost, "/api/medical-records", 1, models.RoleAdmin, map[string]int{"appointment_id": 10})
			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Error)
		})
	}
}

func TestCreateRecord_RejectsOversizedNotes(t *testing.T) {
	s := newTestServer(t)

	body := map[string]interface{}{"appointment_id": 10, "notes": string(make([]byte, 2001))}
	w := s.do(t, http.MethodPost, "/api/medical-records", 1, models.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRecord(t *testing.T) {
	s := newTestServer(t)
	s.records.getByID = func(id uint) (*service.MedicalRecordResponse, bool, error) {
		if id == 1 {
			return &service.MedicalRecordResponse{ID: 1}, true, nil
		}
		return nil, false, nil
	}

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/medical-records/1", 7, models.RolePatient, nil).Code)

	w := s.do(t, http.MethodGet, "/api/medical-records/2", 7, models.RolePatient, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "medical record not found", decode(t, w).Error)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/medical-records/abc", 7, models.RolePatient, nil).Code)
}

func TestDeleteRecord_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	var deletedBy uint
	s.records.delete = func(id, actor uint) error {
		deletedBy = actor
		return nil
	}

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/medical-records/1", 3, models.RoleDoctor, nil).Code)

	w := s.do(t, http.MethodDelete, "/api/medical-records/1", 42, models.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), deletedBy)
}

func TestListByPatient_OwnRecordsOnly(t *testing.T) {
	s := newTestServer(t)
	s.records.byPatient = func(uint) ([]service.MedicalRecordResponse, error) {
		return nil, nil
	}

	w := s.do(t, http.MethodGet, "/api/medical-records/patient/7", 7, models.RolePatient, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"records":[],"count":0}`, string(decode(t, w).Data))

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/medical-records/patient/8", 7, models.RolePatient, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/medical-records/patient/8", 1, models.RoleAdmin, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/medical-records/patient/8", 3, models.RoleDoctor, nil).Code)
}

func TestExportByDoctor(t *testing.T) {
	s := newTestServer(t)
	s.export = func(doctorID uint, w io.Writer) error {
		if doctorID != 3 {
			return &service.Error{Kind: service.KindNotFound, Message: "doctor 9 not found"}
		}
		_, err := w.Write([]byte("xlsx-bytes"))
		return err
	}

	w := s.do(t, http.MethodGet, "/api/medical-records/doctor/3/export", 3, models.RoleDoctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "medical-records-doctor-3.xlsx")
	assert.Equal(t, "xlsx-bytes", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/medical-records/doctor/9/export", 3, models.RoleDoctor, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func ownedDoctors(id uint) (*service.DoctorResponse, error) {
	owners := map[uint]uint{1: 11, 2: 12}
	userID, ok := owners[id]
	if !ok {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "doctor not found"}
	}
	return &service.DoctorResponse{ID: id, UserID: userID}, nil
}

func TestUpdateDoctor_SyncWarningsInBody(t *testing.T) {
	s := newTestServer(t)
	s.doctors.getByID = ownedDoctors
	s.doctors.update = func(id uint, in service.DoctorInput) (*service.DoctorResponse, error) {
		return &service.DoctorResponse{
			ID:   id,
			Name: in.Name,
			SyncWarnings: []service.SyncWarning{
				{TaskID: 5, UserID: 11, Action: models.SyncActionUpdate, Error: "user service unavailable"},
			},
		}, nil
	}

	body := map[string]interface{}{"name": "Meredith Grey", "title": "Attending", "department_ids": []uint{2}}
	w := s.do(t, http.MethodPut, "/api/doctors/1", 11, models.RoleDoctor, body)
	require.Equal(t, http.StatusOK, w.Code)

	var doctor service.DoctorResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &doctor))
	assert.Equal(t, "Meredith Grey", doctor.Name)
	require.Len(t, doctor.SyncWarnings, 1)
	assert.Equal(t, "user service unavailable", doctor.SyncWarnings[0].Error)

	missingTitle := map[string]interface{}{"name": "Meredith Grey"}
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/doctors/1", 11, models.RoleDoctor, missingTitle).Code)
}

func TestUpdateDoctor_OwnProfileOnly(t *testing.T) {
	s := newTestServer(t)
	s.doctors.getByID = ownedDoctors
	var updated []uint
	s.doctors.update = func(id uint, in service.DoctorInput) (*service.DoctorResponse, error) {
		updated = append(updated, id)
		return &service.DoctorResponse{ID: id, Name: in.Name}, nil
	}
	body := map[string]interface{}{"name": "Derek Shepherd", "title": "Attending", "username": "taken", "department_ids": []uint{1}}

	w := s.do(t, http.MethodPut, "/api/doctors/2", 11, models.RoleDoctor, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Doctors may only edit their own profile", decode(t, w).Error)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/doctors/9", 11, models.RoleDoctor, body).Code)
	assert.Empty(t, updated)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/doctors/2", 12, models.RoleDoctor, body).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/doctors/2", 1, models.RoleAdmin, body).Code)
	assert.Equal(t, []uint{2, 2}, updated)
}

func TestSearchDoctors_QueryParsing(t *testing.T) {
	s := newTestServer(t)
	var got service.DoctorSearch
	var gotPage pagination.Page
	s.doctors.search = func(c service.DoctorSearch, p pagination.Page) (pagination.Result[service.DoctorResponse], error) {
		got, gotPage = c, p
		return pagination.NewResult[service.DoctorResponse](nil, 0, p), nil
	}

	w := s.do(t, http.MethodGet, "/api/doctors?name=Li&department_id=3&department_ids=2,5&department_ids=7&status=1&page=2&size=500", 7, models.RolePatient, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Li", got.Name)
	require.NotNil(t, got.DepartmentID)
	assert.Equal(t, uint(3), *got.DepartmentID)
	assert.Equal(t, []uint{2, 5, 7}, got.DepartmentIDs)
	require.NotNil(t, got.Status)
	assert.Equal(t, 1, *got.Status)
	assert.Equal(t, pagination.Page{Number: 2, Size: pagination.MaxSize}, gotPage)

	w = s.do(t, http.MethodGet, "/api/doctors?department_ids=2,x", 7, models.RolePatient, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid query parameter department_ids", decode(t, w).Error)
}

func TestSyncTasks_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	var gotStatus string
	s.tasks.list = func(status string) ([]models.UserSyncTask, error) {
		gotStatus = status
		return []models.UserSyncTask{{ID: 1, Status: status}}, nil
	}

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/sync-tasks", 3, models.RoleDoctor, nil).Code)

	w := s.do(t, http.MethodGet, "/api/admin/sync-tasks", 1, models.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SyncStatusFailed, gotStatus)

	w = s.do(t, http.MethodPost, "/api/admin/sync-tasks/4/retry", 1, models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var task models.UserSyncTask
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &task))
	assert.Equal(t, uint(4), task.ID)
}
