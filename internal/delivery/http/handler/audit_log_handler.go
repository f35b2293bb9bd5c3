package handler

import (
	"net/http"

	"medical-slot-booking/internal/converter"
	"medical-slot-booking/internal/delivery/http/middleware"
	"medical-slot-booking/internal/usecase"
	"medical-slot-booking/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) ListByAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		response.ValidationError(w, map[string]string{"action": "action is required"})
		return
	}

	logs, err := h.auditLogUsecase.ListByAction(r.Context(), userID, action)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", converter.AuditLogsToListResponse(logs))
}
