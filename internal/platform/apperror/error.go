package apperror

import "fmt"

// AppError carries everything the REST layer needs to answer: the general
// category, the precise business reason, and the HTTP status.
type AppError struct {
	Code         ErrorCode
	BusinessCode BusinessCode
	Message      string
	HTTPStatus   int
	Details      any
	Inner        error
}

func (e *AppError) Error() string { return e.Message }
func (e *AppError) Unwrap() error { return e.Inner }

// WithDetails returns a copy carrying extra details, so shared sentinel
// errors are never mutated.
func (e *AppError) WithDetails(details any) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func New(code ErrorCode, bizCode BusinessCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, BusinessCode: bizCode, Message: message, HTTPStatus: httpStatus}
}

// Wrap builds an AppError around an underlying cause.
func Wrap(inner error, code ErrorCode, bizCode BusinessCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, BusinessCode: bizCode, Message: message, HTTPStatus: httpStatus, Inner: inner}
}

// Is matches on both code axes, so errors.Is distinguishes e.g. a missing
// article from a missing comment.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.BusinessCode == t.BusinessCode
}

// Format renders the full error chain under %+v and just the message
// otherwise.
func (e *AppError) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			_, _ = fmt.Fprintf(f, "Code: %s, BusinessCode: %s, Message: %s, HTTPStatus: %d",
				e.Code, e.BusinessCode, e.Message, e.HTTPStatus)
			if e.Inner != nil {
				_, _ = fmt.Fprintf(f, "\nCaused by: %+v", e.Inner)
			}
			if e.Details != nil {
				_, _ = fmt.Fprintf(f, "\nDetails: %+v", e.Details)
			}
		} else {
			_, _ = fmt.Fprint(f, e.Message)
		}
	case 's':
		_, _ = fmt.Fprint(f, e.Message)
	}
}
