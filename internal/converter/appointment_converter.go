package converter

import (
	"medical-slot-booking/internal/delivery/dto"
	"medical-slot-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                 appointment.ID,
		PatientID:          appointment.PatientID,
		DoctorID:           appointment.DoctorID,
		ClinicID:           appointment.ClinicID,
		TimeSlotID:         appointment.SlotID,
		AppointmentDate:    appointment.AppointmentDate.Format(entity.DateLayout),
		StartTime:          appointment.StartTime.String(),
		EndTime:            appointment.EndTime.String(),
		Status:             string(appointment.Status),
		ReasonForVisit:     appointment.ReasonForVisit,
		Notes:              appointment.Notes,
		CancellationReason: appointment.CancellationReason,
		CancelledAt:        appointment.CancelledAt,
		Version:            appointment.Version,
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
	}
}
