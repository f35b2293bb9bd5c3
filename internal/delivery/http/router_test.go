package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medical-slot-booking/config"
	"medical-slot-booking/internal/delivery/http/handler"
	"medical-slot-booking/internal/delivery/http/middleware"
	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/repository/memory"
	"medical-slot-booking/internal/service"
	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/jwt"
	"medical-slot-booking/pkg/metrics"
	"medical-slot-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler *mux.Router
	store   *memory.Store

	doctor  *entity.DoctorProfile
	patient *entity.PatientProfile

	doctorToken  string
	patientToken string
	otherToken   string
	adminToken   string
}

func newTestServer(t *testing.T, limit rate.Limit, burst int) *testServer {
	t.Helper()
	ctx := context.Background()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	ts := &testServer{t: t, store: store}

	addUser := func(roleID int) (uuid.UUID, string) {
		user := &entity.User{ID: uuid.New(), RoleID: roleID, Email: uuid.NewString() + "@example.com", FullName: "User", EmailVerified: true, IsActive: true}
		require.NoError(t, store.Users().Create(ctx, user))
		token, _, err := jwtService.GenerateAccessToken(user.ID, user.Email, roleID)
		require.NoError(t, err)
		return user.ID, token
	}

	doctorUser, doctorToken := addUser(entity.RoleIDDoctor)
	patientUser, patientToken := addUser(entity.RoleIDPatient)
	otherUser, otherToken := addUser(entity.RoleIDPatient)
	_, adminToken := addUser(entity.RoleIDAdmin)
	ts.doctorToken, ts.patientToken, ts.otherToken, ts.adminToken = doctorToken, patientToken, otherToken, adminToken

	ts.doctor = &entity.DoctorProfile{ID: uuid.New(), UserID: doctorUser, ClinicID: uuid.New(), Specialization: "General", IsApproved: true}
	require.NoError(t, store.DoctorProfiles().Create(ctx, ts.doctor))
	ts.patient = &entity.PatientProfile{ID: uuid.New(), UserID: patientUser}
	require.NoError(t, store.PatientProfiles().Create(ctx, ts.patient))
	require.NoError(t, store.PatientProfiles().Create(ctx, &entity.PatientProfile{ID: uuid.New(), UserID: otherUser}))

	directory := service.NewDirectoryService(store)
	m := metrics.New("test")
	deps := usecase.Deps{
		Store:     store,
		Directory: directory,
		Identity:  directory,
		Audit:     service.NewAuditService(log),
		Metrics:   m,
		Log:       log,
	}

	v := validator.NewValidator()
	router := NewRouter(
		handler.NewTimeSlotHandler(usecase.NewTimeSlotUsecase(deps), directory, v),
		handler.NewAppointmentHandler(usecase.NewAppointmentBookingUsecase(deps), usecase.NewAppointmentLifecycleUsecase(deps), v),
		handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(deps)),
		middleware.NewAuthMiddleware(jwtService),
		middleware.NewCORSMiddleware(""),
		middleware.NewLoggingMiddleware(log, m),
		middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: limit, Burst: burst}),
		m.Handler(),
	)
	ts.handler = router.Setup()
	return ts
}

func (ts *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

// createSlots adds one-hour slots for the test doctor five days from now.
func (ts *testServer) createSlots(hours ...int) []map[string]interface{} {
	ts.t.Helper()

	date := time.Now().UTC().AddDate(0, 0, 5).Format(entity.DateLayout)
	slots := make([]map[string]string, len(hours))
	for i, h := range hours {
		slots[i] = map[string]string{
			"date":       date,
			"start_time": entity.NewTimeOfDay(h, 0).String(),
			"end_time":   entity.NewTimeOfDay(h+1, 0).String(),
		}
	}

	rec, resp := ts.do(http.MethodPost, "/api/v1/doctors/me/slots", ts.doctorToken, map[string]interface{}{"slots": slots})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())

	var list struct {
		Slots []map[string]interface{} `json:"slots"`
	}
	require.NoError(ts.t, json.Unmarshal(resp.Data, &list))
	return list.Slots
}

func (ts *testServer) book(slotID string) (*httptest.ResponseRecorder, apiResponse) {
	return ts.do(http.MethodPost, "/api/v1/appointments", ts.patientToken, map[string]string{
		"doctor_id":    ts.doctor.ID.String(),
		"time_slot_id": slotID,
	})
}

func appointmentFrom(t *testing.T, resp apiResponse) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func TestHealthAndHeaders(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)

	rec, _ := ts.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestSlotsAndAvailability(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	created := ts.createSlots(9, 10)
	require.Len(t, created, 2)

	date := time.Now().UTC().AddDate(0, 0, 5).Format(entity.DateLayout)
	path := "/api/v1/doctors/" + ts.doctor.ID.String() + "/slots?start_date=" + date + "&end_date=" + date
	rec, resp := ts.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, 2, list.Total)

	t.Run("overlap is rejected", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/v1/doctors/me/slots", ts.doctorToken, map[string]interface{}{
			"slots": []map[string]string{{"date": date, "start_time": "09:30", "end_time": "10:30"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed times fail validation", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/v1/doctors/me/slots", ts.doctorToken, map[string]interface{}{
			"slots": []map[string]string{{"date": date, "start_time": "9am", "end_time": "10:00"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("patients cannot manage slots", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/v1/doctors/"+ts.doctor.ID.String()+"/slots", ts.patientToken, map[string]interface{}{})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing range", func(t *testing.T) {
		rec, _ := ts.do(http.MethodGet, "/api/v1/doctors/"+ts.doctor.ID.String()+"/slots", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := "/api/v1/doctors/me/slots/" + created[1]["id"].(string)
		rec, _ := ts.do(http.MethodDelete, path, ts.doctorToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = ts.do(http.MethodDelete, path, ts.doctorToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBookingFlow(t *testing.T) {
	ts := newTestServer(t, rate.Inf, 1)
	slots := ts.createSlots(9, 10)
	slotID := slots[0]["id"].(string)

	rec, resp := ts.book(slotID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := appointmentFrom(t, resp)
	assert.Equal(t, "pending", appt["status"])
	apptPath := "/api/v1/appointments/" + appt["id"].(string)

	t.Run("second booking conflicts", func(t *testing.T) {
		rec, resp := ts.book(slotID)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, string(resp.Error), "slot_unavailable")
	})

	t.Run("doctors cannot book", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/v1/appointments", ts.doctorToken, map[string]string{})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rec, _ := ts.do(http.MethodGet, apptPath, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("strangers cannot read", func(t *testing.T) {
		rec, _ := ts.do(http.MethodGet, apptPath, ts.otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("reason too long", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/v1/appointments", ts.patientToken, map[string]string{
			"doctor_id":        ts.doctor.ID.String(),
			"time_slot_id":     slots[1]["id"].(string),
			"reason_for_visit": string(bytes.Repeat([]byte("x"), 501)),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reschedule moves the booking", func(t *testing.T) {
		rec, resp := ts.do(http.MethodPost, apptPath+"/reschedule", ts.patientToken, map[string]string{
			"new_time_slot_id": slots[1]["id"].(string),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, slots[1]["id"], appointmentFrom(t, resp)["time_slot_id"])
	})

	t.Run("doctor confirms", func(t *testing.T) {
		rec, resp := ts.do(http.MethodPost, apptPath+"/confirm", ts.doctorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "confirmed", appointmentFrom(t, resp)["status"])
	})

	t.Run("cancel with legacy spelling frees the slot", func(t *testing.T) {
		rec, resp := ts.do(http.MethodPatch, apptPath+"/status", ts.patientToken, map[string]string{
			"status":              "Cancelled",
			"cancellation_reason": "travel",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := appointmentFrom(t, resp)
		assert.Equal(t, "canceled", got["status"])
		assert.Equal(t, "travel", got["cancellation_reason"])

		rec, _ = ts.book(slots[1]["id"].(string))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("terminal state rejects transitions", func(t *testing.T) {
		rec, resp := ts.do(http.MethodPost, apptPath+"/complete", ts.doctorToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, string(resp.Error), "invalid_transition")
	})

	t.Run("admin reads the audit trail", func(t *testing.T) {
		rec, resp := ts.do(http.MethodGet, "/api/v1/admin/audit-logs?action=appointment.book", ts.adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var list struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.Equal(t, 2, list.Total)

		rec, _ = ts.do(http.MethodGet, "/api/v1/admin/audit-logs?action=appointment.book", ts.patientToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPatch, apptPath+"/status", ts.patientToken, map[string]string{"status": "archived"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRateLimitAndMetrics(t *testing.T) {
	ts := newTestServer(t, rate.Every(time.Hour), 1)

	rec, _ := ts.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="/api/v1/health",status="429"} 1`)
}
