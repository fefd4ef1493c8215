package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every failed ledger operation returns exactly one *Error whose Kind is one of these.
var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
)

// Reasons refine a kind so callers can tell apart failures that share a status.
var (
	ErrDatesRequired   = errors.New("startDate/endDate required")
	ErrStartInPast     = errors.New("startDate cannot be in the past")
	ErrInvalidRange    = errors.New("endDate cannot be on or before startDate")
	ErrOwnListing      = errors.New("cannot book your own listing")
	ErrNotBookingOwner = errors.New("booking does not belong to user")
	ErrBookingStarted  = errors.New("booking already started")
	ErrBookingPast     = errors.New("past bookings can't be modified")
	ErrAlreadyBooked   = errors.New("already booked for the specified dates")
	ErrBookingNotFound = errors.New("booking couldn't be found")
	ErrListingNotFound = errors.New("listing couldn't be found")
)

type Error struct {
	Kind    error
	Reason  error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind, reason error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: reason.Error()}
}

func storageError(op string, err error) *Error {
	return &Error{Kind: ErrStorage, Message: op, Err: err}
}

// KindOf returns the error kind carried by err, or nil when err is not a ledger error.
func KindOf(err error) error {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return nil
}
