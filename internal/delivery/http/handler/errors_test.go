package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"medical-slot-booking/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[usecase.Kind]int{
		usecase.KindValidation:          http.StatusBadRequest,
		usecase.KindBusinessRule:        http.StatusBadRequest,
		usecase.KindInvalidTransition:   http.StatusBadRequest,
		usecase.KindSlotUnavailable:     http.StatusConflict,
		usecase.KindConcurrencyConflict: http.StatusConflict,
		usecase.KindDuplicateConstraint: http.StatusConflict,
		usecase.KindUnauthorized:        http.StatusForbidden,
		usecase.KindNotFound:            http.StatusNotFound,
		usecase.KindUnavailable:         http.StatusServiceUnavailable,
		usecase.KindInternal:            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), kind.String())
	}
}

func TestWriteError(t *testing.T) {
	t.Run("classified error carries its code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, usecase.ErrSlotUnavailable)

		require.Equal(t, http.StatusConflict, rec.Code)
		var body struct {
			Message string            `json:"message"`
			Error   map[string]string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, usecase.ErrSlotUnavailable.Message, body.Message)
		assert.Equal(t, "slot_unavailable", body.Error["code"])
	})

	t.Run("unclassified error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, errors.New("pq: relation does not exist"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "relation")
	})

	t.Run("unavailable asks for a retry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, usecase.ErrUnavailable)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	})
}
