package dto

import (
	"testing"

	"medical-slot-booking/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]entity.AppointmentStatus{
		"pending":   entity.AppointmentStatusPending,
		"Confirmed": entity.AppointmentStatusConfirmed,
		"COMPLETED": entity.AppointmentStatusCompleted,
		"canceled":  entity.AppointmentStatusCanceled,
		"Cancelled": entity.AppointmentStatusCanceled,
		"Canceled":  entity.AppointmentStatusCanceled,
		"NoShow":    entity.AppointmentStatusNoShow,
		"no_show":   entity.AppointmentStatusNoShow,
		"no-show":   entity.AppointmentStatusNoShow,
		" noshow ":  entity.AppointmentStatusNoShow,
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "done", "cancel", "rescheduled"} {
		_, ok := ParseStatus(in)
		assert.False(t, ok, in)
	}
}
