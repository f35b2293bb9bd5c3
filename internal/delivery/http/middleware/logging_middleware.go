package middleware

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"medical-slot-booking/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RequestObserver receives one observation per served request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type LoggingMiddleware struct {
	log      *logrus.Logger
	observer RequestObserver
}

// NewLoggingMiddleware logs every request; observer may be nil.
func NewLoggingMiddleware(log *logrus.Logger, observer RequestObserver) *LoggingMiddleware {
	return &LoggingMiddleware{log: log, observer: observer}
}

func (m *LoggingMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := routeTemplate(r)
		entry := m.log.WithFields(logrus.Fields{
			"request_id": GetRequestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"route":      route,
			"status":     rec.status,
			"duration":   duration.String(),
			"remote_ip":  clientIP(r),
		})
		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Error("request")
		case rec.status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}

		if m.observer != nil {
			m.observer.ObserveRequest(r.Method, route, rec.status, duration)
		}
	})
}

// Recover turns a handler panic into a 500 and logs the stack.
func (m *LoggingMiddleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)
				m.log.WithFields(logrus.Fields{
					"request_id": GetRequestIDFromContext(r.Context()),
					"panic":      fmt.Sprintf("%v", p),
					"stack":      string(stack[:n]),
				}).Error("panic recovered")
				response.InternalServerError(w, "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// routeTemplate keeps metric label cardinality bounded.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
