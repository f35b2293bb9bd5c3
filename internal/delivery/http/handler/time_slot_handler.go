package handler

import (
	"context"
	"net/http"
	"time"

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

// selfAlias lets a doctor address their own schedule without knowing their profile ID.
const selfAlias = "me"

// DoctorResolver finds the doctor profile owned by a user.
type DoctorResolver interface {
	GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error)
}

type TimeSlotHandler struct {
	slotUsecase usecase.TimeSlotUsecase
	doctors     DoctorResolver
	validator   *validator.CustomValidator
}

func NewTimeSlotHandler(slotUsecase usecase.TimeSlotUsecase, doctors DoctorResolver, validator *validator.CustomValidator) *TimeSlotHandler {
	return &TimeSlotHandler{
		slotUsecase: slotUsecase,
		doctors:     doctors,
		validator:   validator,
	}
}

func (h *TimeSlotHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	query := dto.AvailabilityQuery{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}
	startDate, _ := time.Parse(entity.DateLayout, query.StartDate)
	endDate, _ := time.Parse(entity.DateLayout, query.EndDate)

	slots, err := h.slotUsecase.GetAvailability(r.Context(), doctorID, startDate, endDate)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", converter.TimeSlotsToListResponse(slots))
}

func (h *TimeSlotHandler) CreateSlots(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctorID, ok := h.doctorID(w, r, userID)
	if !ok {
		return
	}

	var req dto.CreateSlotsRequest
	if err := decodeJSON(r, &req, false); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	inputs := make([]usecase.SlotInput, len(req.Slots))
	for i, s := range req.Slots {
		// formats were checked by the validator
		date, _ := time.Parse(entity.DateLayout, s.Date)
		start, _ := entity.ParseTimeOfDay(s.StartTime)
		end, _ := entity.ParseTimeOfDay(s.EndTime)
		inputs[i] = usecase.SlotInput{Date: date, StartTime: start, EndTime: end}
	}

	slots, err := h.slotUsecase.AddSlots(r.Context(), doctorID, userID, inputs)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Time slots created successfully", converter.TimeSlotsToListResponse(slots))
}

func (h *TimeSlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctorID, ok := h.doctorID(w, r, userID)
	if !ok {
		return
	}

	slotID, err := uuid.Parse(mux.Vars(r)["slotId"])
	if err != nil {
		response.BadRequest(w, "Invalid slot ID")
		return
	}

	if err := h.slotUsecase.DeleteSlot(r.Context(), doctorID, slotID, userID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Time slot deleted successfully", nil)
}

// doctorID resolves the {doctorId} path variable, expanding "me" to the
// caller's own profile.
func (h *TimeSlotHandler) doctorID(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (uuid.UUID, bool) {
	raw := mux.Vars(r)["doctorId"]
	if raw != selfAlias {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid doctor ID")
			return uuid.Nil, false
		}
		return id, true
	}

	doctor, err := h.doctors.GetDoctorByUser(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "")
		return uuid.Nil, false
	}
	if doctor == nil {
		response.NotFound(w, "Doctor profile not found")
		return uuid.Nil, false
	}
	return doctor.ID, true
}
