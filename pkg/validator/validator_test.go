package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Start  string `json:"start_time" validate:"required,timeofday"`
	Reason string `json:"reason" validate:"max=5"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(sample{Date: "2030-01-15", Start: "09:30", Reason: "ok"}))

	err := v.Validate(sample{Date: "15/01/2030", Start: "25:00", Reason: "too long"})
	require.Error(t, err)

	msgs := v.FormatValidationErrors(err)
	assert.Equal(t, "date must be a date in YYYY-MM-DD format", msgs["date"])
	assert.Equal(t, "start_time must be a time in HH:MM format", msgs["start_time"])
	assert.Equal(t, "reason must be at most 5 characters", msgs["reason"])
}
