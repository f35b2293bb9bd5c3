package repository

import (
	"context"

	"medical-slot-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return translateError(r.db.WithContext(ctx).Create(log).Error)
}

func (r *auditLogRepository) FindByAction(ctx context.Context, action string) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	err := r.db.WithContext(ctx).Where("action = ?", action).Order("created_at ASC, id ASC").Find(&logs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return logs, nil
}
