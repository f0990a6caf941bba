package booking

import (
	"errors"
	"sort"
	"strings"
)

// errors used by controllers

type ErrCode string

const (
	ErrValidation          ErrCode = "VALIDATION_ERROR"
	ErrRoomTypeNotFound    ErrCode = "ROOM_TYPE_NOT_FOUND"
	ErrRoomUnavailable     ErrCode = "ROOM_UNAVAILABLE"
	ErrBookingNotFound     ErrCode = "BOOKING_NOT_FOUND"
	ErrInvalidTransition   ErrCode = "INVALID_TRANSITION"
	ErrIdempotencyConflict ErrCode = "IDEMPOTENCY_CONFLICT"
	ErrInternal            ErrCode = "INTERNAL_ERROR"
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func (e codedError) Error() string {
	if e.msg != "" {
		return string(e.code) + ": " + e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode     { return e.code }
func (e codedError) Unwrap() error     { return e.err }
func makeErr(c ErrCode) error          { return codedError{code: c} }
func wrap(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// NewError builds a coded error for callers outside the package, such as
// adapters and test doubles.
func NewError(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// internal keeps the cause for server-side logs.
func internal(msg string, err error) error {
	return codedError{code: ErrInternal, msg: msg, err: err}
}

// Detail returns the human-readable part of a coded error, if any.
func Detail(err error) string {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.msg
	}
	return ""
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// ValidationError carries one message per offending JSON field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Code() ErrCode { return ErrValidation }

func fieldErr(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// UnavailableError is returned when the requested stay cannot be booked.
// It is an expected outcome.
type UnavailableError struct {
	Reason               string
	ConflictingReference string
}

func (e *UnavailableError) Error() string { return "room unavailable: " + e.Reason }
func (e *UnavailableError) Code() ErrCode { return ErrRoomUnavailable }
