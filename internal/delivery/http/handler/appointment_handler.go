package handler

import (
	"net/http"

	"medical-slot-booking/internal/converter"
	"medical-slot-booking/internal/delivery/dto"
	"medical-slot-booking/internal/delivery/http/middleware"
	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/response"
	"medical-slot-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	bookingUsecase   usecase.AppointmentBookingUsecase
	lifecycleUsecase usecase.AppointmentLifecycleUsecase
	validator        *validator.CustomValidator
}

func NewAppointmentHandler(
	bookingUsecase usecase.AppointmentBookingUsecase,
	lifecycleUsecase usecase.AppointmentLifecycleUsecase,
	validator *validator.CustomValidator,
) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase:   bookingUsecase,
		lifecycleUsecase: lifecycleUsecase,
		validator:        validator,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.BookAppointmentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.Book(r.Context(), usecase.BookRequest{
		PatientUserID:  userID,
		DoctorID:       req.DoctorID,
		TimeSlotID:     req.TimeSlotID,
		ReasonForVisit: req.ReasonForVisit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	appointment, err := h.lifecycleUsecase.GetAppointment(r.Context(), appointmentID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", converter.AppointmentToResponse(appointment))
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	status, ok := dto.ParseStatus(req.Status)
	if !ok {
		response.ValidationError(w, map[string]string{"status": "status must be one of pending, confirmed, completed, canceled, no_show"})
		return
	}

	appointment, err := h.lifecycleUsecase.Transition(r.Context(), appointmentID, userID, status, usecase.TransitionPayload{
		Notes:              req.Notes,
		CancellationReason: req.CancellationReason,
	})
	h.respond(w, appointment, err, "Appointment status updated successfully")
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	appointment, err := h.lifecycleUsecase.Confirm(r.Context(), appointmentID, userID)
	h.respond(w, appointment, err, "Appointment confirmed successfully")
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.CompleteAppointmentRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}

	appointment, err := h.lifecycleUsecase.Complete(r.Context(), appointmentID, userID, req.Notes)
	h.respond(w, appointment, err, "Appointment completed successfully")
}

func (h *AppointmentHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	appointment, err := h.lifecycleUsecase.MarkNoShow(r.Context(), appointmentID, userID)
	h.respond(w, appointment, err, "Appointment marked as no-show")
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.CancelAppointmentRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}

	appointment, err := h.lifecycleUsecase.Cancel(r.Context(), appointmentID, userID, req.Reason)
	h.respond(w, appointment, err, "Appointment canceled successfully")
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	userID, appointmentID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req dto.RescheduleRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.lifecycleUsecase.Reschedule(r.Context(), appointmentID, userID, req.NewTimeSlotID, req.Reason)
	h.respond(w, appointment, err, "Appointment rescheduled successfully")
}

// target extracts the caller and the {id} path variable.
func (h *AppointmentHandler) target(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return uuid.Nil, uuid.Nil, false
	}

	appointmentID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, appointmentID, true
}

func (h *AppointmentHandler) decodeOptional(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(r, dst, true); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

func (h *AppointmentHandler) respond(w http.ResponseWriter, appointment *entity.Appointment, err error, message string) {
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, message, converter.AppointmentToResponse(appointment))
}
