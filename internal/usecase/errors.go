package usecase

import (
	"errors"

	"medical-slot-booking/internal/domain/entity"
)

// Kind classifies an error for callers. The delivery layer maps kinds to
// transport status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBusinessRule
	KindInvalidTransition
	KindSlotUnavailable
	KindConcurrencyConflict
	KindUnauthorized
	KindNotFound
	KindDuplicateConstraint
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindSlotUnavailable:
		return "slot_unavailable"
	case KindConcurrencyConflict:
		return "concurrency_conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindDuplicateConstraint:
		return "duplicate_constraint"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Retryable reports whether the same request may succeed if sent again.
func (k Kind) Retryable() bool {
	return k == KindUnavailable
}

// Error is the only error type returned across the usecase boundary.
// Two Errors match under errors.Is when kind and message agree, so wrapped
// copies of a sentinel still match the sentinel.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// wrap returns a copy of e carrying cause.
func (e *Error) wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

// KindOf returns the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	var te *entity.InvalidTransitionError
	if errors.As(err, &te) {
		return KindInvalidTransition
	}
	return KindInternal
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func invalidTransition(err error) *Error {
	return &Error{Kind: KindInvalidTransition, Message: err.Error(), Err: err}
}

var (
	ErrDoctorNotFound      = &Error{Kind: KindNotFound, Message: "doctor not found"}
	ErrSlotNotFound        = &Error{Kind: KindNotFound, Message: "time slot not found"}
	ErrAppointmentNotFound = &Error{Kind: KindNotFound, Message: "appointment not found"}

	ErrEmailNotVerified      = &Error{Kind: KindBusinessRule, Message: "please verify your email before booking appointments"}
	ErrPatientProfileMissing = &Error{Kind: KindBusinessRule, Message: "patient profile not found"}
	ErrDoctorNotApproved     = &Error{Kind: KindBusinessRule, Message: "doctor is not approved for appointments"}
	ErrSlotDoctorMismatch    = &Error{Kind: KindBusinessRule, Message: "time slot does not belong to the specified doctor"}
	ErrSlotInPast            = &Error{Kind: KindBusinessRule, Message: "cannot book a time slot in the past"}
	ErrSlotOverlap           = &Error{Kind: KindBusinessRule, Message: "time slot overlaps with an existing slot"}
	ErrSlotBooked            = &Error{Kind: KindBusinessRule, Message: "cannot delete a booked time slot"}
	ErrCancelPast            = &Error{Kind: KindBusinessRule, Message: "cannot cancel past appointments"}
	ErrRescheduleClosed      = &Error{Kind: KindBusinessRule, Message: "cannot reschedule canceled or completed appointments"}

	ErrSlotUnavailable     = &Error{Kind: KindSlotUnavailable, Message: "time slot is no longer available"}
	ErrConcurrencyConflict = &Error{Kind: KindConcurrencyConflict, Message: "record was modified by another request, reload and try again"}
	ErrDuplicate           = &Error{Kind: KindDuplicateConstraint, Message: "record already exists"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "you are not allowed to perform this action"}
	ErrUnavailable         = &Error{Kind: KindUnavailable, Message: "service temporarily unavailable, please retry"}
	ErrInternal            = &Error{Kind: KindInternal, Message: "internal server error"}
)
