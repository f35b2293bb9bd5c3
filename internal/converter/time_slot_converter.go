package converter

import (
	"medical-slot-booking/internal/delivery/dto"
	"medical-slot-booking/internal/domain/entity"
)

// TimeSlotToResponse converts a TimeSlot entity to TimeSlotResponse DTO
func TimeSlotToResponse(slot *entity.TimeSlot) *dto.TimeSlotResponse {
	if slot == nil {
		return nil
	}

	return &dto.TimeSlotResponse{
		ID:        slot.ID,
		DoctorID:  slot.DoctorID,
		Date:      slot.Date.Format(entity.DateLayout),
		StartTime: slot.StartTime.String(),
		EndTime:   slot.EndTime.String(),
		IsBooked:  slot.IsBooked,
		Version:   slot.Version,
		CreatedAt: slot.CreatedAt,
	}
}

// TimeSlotsToListResponse converts a slice of TimeSlot entities to a list response
func TimeSlotsToListResponse(slots []entity.TimeSlot) *dto.TimeSlotListResponse {
	responses := make([]dto.TimeSlotResponse, len(slots))
	for i := range slots {
		responses[i] = *TimeSlotToResponse(&slots[i])
	}
	return &dto.TimeSlotListResponse{Slots: responses, Total: len(responses)}
}
