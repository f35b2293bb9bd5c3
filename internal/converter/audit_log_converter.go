package converter

import (
	"medical-slot-booking/internal/delivery/dto"
	"medical-slot-booking/internal/domain/entity"
)

// AuditLogsToListResponse converts a slice of AuditLog entities to a list response
func AuditLogsToListResponse(logs []entity.AuditLog) *dto.AuditLogListResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = dto.AuditLogResponse{
			ID:        log.ID,
			UserID:    log.UserID,
			Action:    log.Action,
			Metadata:  log.Metadata,
			CreatedAt: log.CreatedAt,
		}
	}
	return &dto.AuditLogListResponse{Logs: responses, Total: len(responses)}
}
