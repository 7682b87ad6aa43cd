package apperr

import "errors"

var (
	ErrValidation    = errors.New("validation")
	ErrAuthorization = errors.New("authorization")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient")
)
