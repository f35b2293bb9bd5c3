package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medical-slot-booking/config"
	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/repository/memory"
	"medical-slot-booking/pkg/jwt"
	"medical-slot-booking/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeServerServesAdminAuditLogs(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		App:     config.AppConfig{Port: "0", StoreDriver: config.StoreDriverMemory},
		JWT:     config.JWTConfig{Secret: "bootstrap-test", AccessExpiry: time.Hour},
		Booking: config.BookingConfig{UnitTimeout: time.Second},
	}
	app := &App{
		Config:  cfg,
		Log:     log,
		Store:   memory.NewStore(),
		Metrics: metrics.New("bootstrap_test"),
		JWT:     jwt.NewJWTService(cfg.JWT),
	}

	app.Usecases = app.buildUsecases()
	require.NotNil(t, app.Usecases.TimeSlots)
	require.NotNil(t, app.Usecases.Booking)
	require.NotNil(t, app.Usecases.Lifecycle)
	require.NotNil(t, app.Usecases.AuditLogs)
	require.NotNil(t, app.Usecases.Directory)

	admin := &entity.User{
		ID:            uuid.New(),
		RoleID:        entity.RoleIDAdmin,
		Email:         "admin@example.com",
		FullName:      "Admin",
		EmailVerified: true,
		IsActive:      true,
	}
	require.NoError(t, app.Store.Users().Create(context.Background(), admin))
	token, _, err := app.JWT.GenerateAccessToken(admin.ID, admin.Email, admin.RoleID)
	require.NoError(t, err)

	server := app.initializeServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs?action="+entity.AuditActionAppointmentBook, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
