package bootstrap

import (
	"context"
	"io"
	"testing"
	"time"

	"medical-slot-booking/config"
	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/repository/memory"
	"medical-slot-booking/internal/service"
	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewStore()
	directory := service.NewDirectoryService(store)
	slots := usecase.NewTimeSlotUsecase(usecase.Deps{
		Store:     store,
		Directory: directory,
		Identity:  directory,
		Audit:     service.NewAuditService(log),
		Log:       log,
	})
	tokens := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Hour})

	result, err := Seed(ctx, store, slots, tokens, log, SeedOptions{Doctors: 2, Patients: 3, Days: 2, Seed: 42})
	require.NoError(t, err)

	// admin + 2 doctors + 3 patients
	require.Len(t, result.Users, 6)
	// 14 half-hour slots per day
	assert.Equal(t, 2*2*14, result.Slots)

	for _, u := range result.Users {
		claims, err := tokens.ValidateToken(u.Token)
		require.NoError(t, err)
		assert.Equal(t, u.RoleID, claims.RoleID)
	}

	var doctor SeededUser
	for _, u := range result.Users {
		if u.RoleID == entity.RoleIDDoctor {
			doctor = u
			break
		}
	}
	profile, err := directory.GetDoctorByUser(ctx, doctor.UserID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, profile.AverageRating.GreaterThanOrEqual(decimal.NewFromInt(3)))
	assert.True(t, profile.AverageRating.LessThanOrEqual(decimal.NewFromInt(5)))
	assert.True(t, profile.IsApproved)

	tomorrow := entity.DateOnly(time.Now().UTC().AddDate(0, 0, 1))
	available, err := slots.GetAvailability(ctx, profile.ID, tomorrow, tomorrow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, available, 28)
}
