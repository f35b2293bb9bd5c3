package repository

import (
	"context"

	"medical-slot-booking/internal/domain/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindByAction(ctx context.Context, action string) ([]entity.AuditLog, error)
}
