// Package apperr carries the coded errors shared by services, the request
// guard and the controllers. Services return them, controllers switch on the
// code to pick an HTTP status.
package apperr

import "errors"

type ErrCode string

const (
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrConflict       ErrCode = "CONFLICT"
	ErrAuthentication ErrCode = "BAD_CREDENTIALS"
	ErrLocked         ErrCode = "ACCOUNT_LOCKED"
	ErrExpired        ErrCode = "ACCOUNT_EXPIRED"
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrValidation     ErrCode = "VALIDATION"
	ErrInvalidToken   ErrCode = "INVALID_TOKEN"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }

func New(c ErrCode, msg string) error {
	if msg == "" {
		msg = string(c)
	}
	return codedError{code: c, msg: msg}
}

// Code extracts the error code, or "" for plain errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func Is(err error, c ErrCode) bool { return Code(err) == c }
