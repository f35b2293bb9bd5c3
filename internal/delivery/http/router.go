package http

import (
	"net/http"

	"medical-slot-booking/internal/delivery/http/handler"
	"medical-slot-booking/internal/delivery/http/middleware"
	"medical-slot-booking/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	timeSlotHandler    *handler.TimeSlotHandler
	appointmentHandler *handler.AppointmentHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	loggingMiddleware  *middleware.LoggingMiddleware
	rateLimiter        *middleware.RateLimiter
	metricsHandler     http.Handler
}

func NewRouter(
	timeSlotHandler *handler.TimeSlotHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	rateLimiter *middleware.RateLimiter,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		timeSlotHandler:    timeSlotHandler,
		appointmentHandler: appointmentHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		loggingMiddleware:  loggingMiddleware,
		rateLimiter:        rateLimiter,
		metricsHandler:     metricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	// Outermost first: every response carries a request ID and is logged,
	// including rate-limited and panicking ones.
	r.router.Use(middleware.RequestID)
	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.loggingMiddleware.Recover)
	r.router.Use(middleware.SecurityHeaders)
	r.router.Use(r.corsMiddleware.Handle)

	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()
	if r.rateLimiter != nil {
		api.Use(r.rateLimiter.Handle)
	}

	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Availability (public)
	api.HandleFunc("/doctors/{doctorId}/slots", r.timeSlotHandler.GetAvailability).Methods(http.MethodGet)

	// Slot management (doctor)
	slots := api.PathPrefix("/doctors/{doctorId}/slots").Subrouter()
	slots.Use(r.authMiddleware.Authenticate)
	slots.Use(middleware.RequireDoctor)
	slots.HandleFunc("", r.timeSlotHandler.CreateSlots).Methods(http.MethodPost)
	slots.HandleFunc("/{slotId}", r.timeSlotHandler.DeleteSlot).Methods(http.MethodDelete)

	// Appointments (authenticated; per-appointment permissions are enforced by the usecases)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Handle("", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.Book))).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)
	appointments.HandleFunc("/{id}/confirm", r.appointmentHandler.Confirm).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/complete", r.appointmentHandler.Complete).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/no-show", r.appointmentHandler.MarkNoShow).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	appointments.Handle("/{id}/reschedule", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.Reschedule))).Methods(http.MethodPost)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListByAction).Methods(http.MethodGet)

	r.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "")
	})

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
