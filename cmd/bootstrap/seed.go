package bootstrap

import (
	"context"
	"fmt"
	"time"

	"medical-slot-booking/internal/domain/entity"
	domainRepo "medical-slot-booking/internal/domain/repository"
	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/jwt"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var specializations = []string{
	"Cardiology",
	"Dermatology",
	"General Practice",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
}

type SeedOptions struct {
	Doctors  int
	Patients int
	Days     int
	// Seed makes the generated data reproducible; 0 picks a random seed.
	Seed uint64
}

// SeededUser is a generated account and a ready-to-use access token.
type SeededUser struct {
	UserID    uuid.UUID
	ProfileID uuid.UUID
	Email     string
	RoleID    int
	Token     string
}

type SeedResult struct {
	Users []SeededUser
	Slots int
}

// Seed fills the store with demo doctors, patients and bookable slots.
// Slots go through the slot usecase so they obey the same overlap rules as
// slots created over HTTP.
func Seed(ctx context.Context, store domainRepo.Store, slots usecase.TimeSlotUsecase, tokens *jwt.JWTService, log *logrus.Logger, opts SeedOptions) (*SeedResult, error) {
	faker := gofakeit.New(opts.Seed)
	result := &SeedResult{}

	issue := func(user *entity.User, profileID uuid.UUID) error {
		token, _, err := tokens.GenerateAccessToken(user.ID, user.Email, user.RoleID)
		if err != nil {
			return err
		}
		result.Users = append(result.Users, SeededUser{
			UserID:    user.ID,
			ProfileID: profileID,
			Email:     user.Email,
			RoleID:    user.RoleID,
			Token:     token,
		})
		return nil
	}

	admin := newSeedUser(faker, entity.RoleIDAdmin)
	if err := store.Users().Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if err := issue(admin, uuid.Nil); err != nil {
		return nil, err
	}

	doctors := make([]*entity.DoctorProfile, 0, opts.Doctors)
	err := store.WithTx(ctx, func(tx domainRepo.Store) error {
		clinicID := uuid.New()
		for i := 0; i < opts.Doctors; i++ {
			user := newSeedUser(faker, entity.RoleIDDoctor)
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
			doctor := &entity.DoctorProfile{
				ID:             uuid.New(),
				UserID:         user.ID,
				ClinicID:       clinicID,
				Specialization: faker.RandomString(specializations),
				IsApproved:     true,
				AverageRating:  decimal.NewFromFloat(faker.Float64Range(3, 5)).Round(2),
				TotalReviews:   faker.Number(0, 250),
			}
			if err := tx.DoctorProfiles().Create(ctx, doctor); err != nil {
				return err
			}
			if err := issue(user, doctor.ID); err != nil {
				return err
			}
			doctors = append(doctors, doctor)
		}

		for i := 0; i < opts.Patients; i++ {
			user := newSeedUser(faker, entity.RoleIDPatient)
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
			patient := &entity.PatientProfile{
				ID:          uuid.New(),
				UserID:      user.ID,
				PhoneNumber: faker.Numerify("+1##########"),
			}
			if err := tx.PatientProfiles().Create(ctx, patient); err != nil {
				return err
			}
			if err := issue(user, patient.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}

	// half-hour slots, 09:00-12:00 and 13:00-17:00, starting tomorrow
	today := time.Now().UTC()
	for _, doctor := range doctors {
		var inputs []usecase.SlotInput
		for d := 1; d <= opts.Days; d++ {
			date := entity.DateOnly(today.AddDate(0, 0, d))
			for _, span := range [][2]int{{9, 12}, {13, 17}} {
				for m := span[0] * 60; m < span[1]*60; m += 30 {
					inputs = append(inputs, usecase.SlotInput{
						Date:      date,
						StartTime: entity.TimeOfDay(m),
						EndTime:   entity.TimeOfDay(m + 30),
					})
				}
			}
		}
		if len(inputs) == 0 {
			continue
		}
		created, err := slots.AddSlots(ctx, doctor.ID, doctor.UserID, inputs)
		if err != nil {
			return nil, fmt.Errorf("seed slots for doctor %s: %w", doctor.ID, err)
		}
		result.Slots += len(created)
	}

	log.WithFields(logrus.Fields{
		"doctors":  len(doctors),
		"patients": opts.Patients,
		"slots":    result.Slots,
	}).Info("Seed complete")
	return result, nil
}

func newSeedUser(faker *gofakeit.Faker, roleID int) *entity.User {
	return &entity.User{
		ID:            uuid.New(),
		RoleID:        roleID,
		Email:         fmt.Sprintf("%s.%s@example.com", entity.RoleNameByID(roleID), uuid.NewString()[:8]),
		FullName:      faker.Name(),
		EmailVerified: true,
		IsActive:      true,
	}
}
