package domain

import (
	"errors"
	"fmt"
	"strings"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// SeatsUnavailableError is returned when a schedule has no seats left to reserve.
type SeatsUnavailableError struct {
	ScheduleID int64
}

func (e SeatsUnavailableError) Error() string {
	return fmt.Sprintf("no seats available on schedule %d", e.ScheduleID)
}

// IllegalTransitionError rejects a booking status change not in the transition table.
// Allowed carries the legal targets so callers can tell the user what is possible.
type IllegalTransitionError struct {
	From    BookingStatus
	To      BookingStatus
	Allowed []BookingStatus
}

func (e IllegalTransitionError) Error() string {
	targets := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		targets = append(targets, string(s))
	}
	if len(targets) == 0 {
		return fmt.Sprintf("cannot move booking from %s to %s: %s is terminal", e.From, e.To, e.From)
	}
	return fmt.Sprintf("cannot move booking from %s to %s (allowed: %s)", e.From, e.To, strings.Join(targets, ", "))
}

// SignatureError marks a gateway notification whose signature did not verify.
type SignatureError struct {
	Msg string
}

func (e SignatureError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid gateway signature"
}

// GatewaySetupError marks a failed payment initiation. Callers must compensate
// (release the seat, cancel the booking) before surfacing it.
type GatewaySetupError struct {
	Msg string
	Err error
}

func (e GatewaySetupError) Error() string {
	if e.Msg != "" {
		return "payment setup failed: " + e.Msg
	}
	return "payment setup failed"
}

func (e GatewaySetupError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsSeatsUnavailable(err error) bool {
	var target SeatsUnavailableError
	return errors.As(err, &target)
}

func IsIllegalTransition(err error) bool {
	var target IllegalTransitionError
	return errors.As(err, &target)
}

func IsSignature(err error) bool {
	var target SignatureError
	return errors.As(err, &target)
}

func IsGatewaySetup(err error) bool {
	var target GatewaySetupError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
