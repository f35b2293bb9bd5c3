package usecase

import (
	"context"
	"time"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"
	"medical-slot-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultUnitTimeout = 5 * time.Second

// Deps carries the collaborators shared by the booking usecases. Optional
// fields fall back to no-op implementations.
type Deps struct {
	Store       repository.Store
	Directory   Directory
	Identity    IdentityProvider
	Audit       service.AuditService
	Events      EventPublisher
	Cache       AvailabilityCache
	Metrics     Metrics
	Log         *logrus.Logger
	Now         func() time.Time
	UnitTimeout time.Duration
}

// engine holds what every usecase needs to run an atomic unit.
type engine struct {
	store       repository.Store
	directory   Directory
	identity    IdentityProvider
	audit       service.AuditService
	events      EventPublisher
	cache       AvailabilityCache
	metrics     Metrics
	log         *logrus.Logger
	now         func() time.Time
	unitTimeout time.Duration
	reporter    *conflictReporter
}

func newEngine(d Deps) *engine {
	e := &engine{
		store:       d.Store,
		directory:   d.Directory,
		identity:    d.Identity,
		audit:       d.Audit,
		events:      d.Events,
		cache:       d.Cache,
		metrics:     d.Metrics,
		log:         d.Log,
		now:         d.Now,
		unitTimeout: d.UnitTimeout,
	}
	if e.log == nil {
		e.log = logrus.New()
	}
	if e.audit == nil {
		e.audit = service.NewAuditService(e.log)
	}
	if e.events == nil {
		e.events = noopPublisher{}
	}
	if e.cache == nil {
		e.cache = passthroughCache{}
	}
	if e.metrics == nil {
		e.metrics = noopMetrics{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.unitTimeout <= 0 {
		e.unitTimeout = defaultUnitTimeout
	}
	e.reporter = &conflictReporter{log: e.log}
	return e
}

// today is the current UTC calendar date.
func (e *engine) today() time.Time {
	return entity.DateOnly(e.now().UTC())
}

// runUnit executes fn as one atomic unit bounded by the unit timeout. Any
// error is classified before it is returned.
func (e *engine) runUnit(ctx context.Context, op string, scope conflictScope, fn func(ctx context.Context, tx repository.Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.unitTimeout)
	defer cancel()

	start := time.Now()
	err := e.store.WithTx(ctx, func(tx repository.Store) error {
		return fn(ctx, tx)
	})
	err = e.reporter.report(op, scope, err)

	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	e.metrics.ObserveUnit(op, outcome, time.Since(start))
	return err
}

// lookupErr classifies a failed read made outside an atomic unit.
func (e *engine) lookupErr(op string, err error) error {
	return e.reporter.report(op, scopeLifecycle, err)
}

// invalidate drops cached availability for the doctor. The unit has already
// committed, so a failure only costs a stale read until the TTL expires.
func (e *engine) invalidate(ctx context.Context, doctorID uuid.UUID) {
	if err := e.cache.Invalidate(ctx, doctorID); err != nil {
		e.log.Warnf("Failed to invalidate availability cache for doctor %s: %+v", doctorID, err)
	}
}

func (e *engine) publish(ctx context.Context, event entity.AppointmentEvent) {
	if err := e.events.Publish(ctx, event); err != nil {
		e.log.Warnf("Failed to publish %s for appointment %s: %+v", event.Type, event.AppointmentID, err)
	}
}
