package usecase

import (
	"context"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

var auditActions = map[string]bool{
	entity.AuditActionSlotCreate:          true,
	entity.AuditActionSlotDelete:          true,
	entity.AuditActionAppointmentBook:     true,
	entity.AuditActionAppointmentStatus:   true,
	entity.AuditActionAppointmentSchedule: true,
}

// AuditLogUsecase exposes the booking audit trail to administrators.
type AuditLogUsecase interface {
	ListByAction(ctx context.Context, callerUserID uuid.UUID, action string) ([]entity.AuditLog, error)
}

type auditLogUsecase struct {
	*engine
}

func NewAuditLogUsecase(deps Deps) AuditLogUsecase {
	return &auditLogUsecase{engine: newEngine(deps)}
}

func (u *auditLogUsecase) ListByAction(ctx context.Context, callerUserID uuid.UUID, action string) ([]entity.AuditLog, error) {
	if !auditActions[action] {
		return nil, validationError("unknown audit action " + action)
	}

	isAdmin, err := u.identity.HasRole(ctx, callerUserID, entity.RoleAdmin)
	if err != nil {
		return nil, u.lookupErr("ListAuditLogs", err)
	}
	if !isAdmin {
		return nil, ErrUnauthorized
	}

	logs, err := u.store.AuditLogs().FindByAction(ctx, action)
	if err != nil {
		u.log.Warnf("Failed to find audit logs for %s: %+v", action, err)
		return nil, u.lookupErr("ListAuditLogs", err)
	}
	if logs == nil {
		logs = []entity.AuditLog{}
	}
	return logs, nil
}
