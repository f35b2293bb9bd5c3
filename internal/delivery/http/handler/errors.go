package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/response"
)

// statusFor maps a usecase error kind to an HTTP status code.
func statusFor(kind usecase.Kind) int {
	switch kind {
	case usecase.KindValidation, usecase.KindBusinessRule, usecase.KindInvalidTransition:
		return http.StatusBadRequest
	case usecase.KindSlotUnavailable, usecase.KindConcurrencyConflict, usecase.KindDuplicateConstraint:
		return http.StatusConflict
	case usecase.KindUnauthorized:
		return http.StatusForbidden
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a usecase error. Internal errors never leak their cause.
func writeError(w http.ResponseWriter, err error) {
	kind := usecase.KindOf(err)
	switch kind {
	case usecase.KindInternal:
		response.InternalServerError(w, "")
	case usecase.KindUnavailable:
		response.ServiceUnavailable(w, err.Error())
	default:
		response.Error(w, statusFor(kind), err.Error(), map[string]string{"code": kind.String()})
	}
}

// decodeJSON reads a request body into dst. An empty body is accepted when
// optional is set.
func decodeJSON(r *http.Request, dst interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
