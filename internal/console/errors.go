package console

import "errors"

// Predefined errors for console operations.
var (
	ErrFormOpen      = errors.New("console: a form session is already open")
	ErrFormClosed    = errors.New("console: no form session is open")
	ErrBusy          = errors.New("console: a mutating action is already in flight")
	ErrValidation    = errors.New("console: validation failed")
	ErrFileTooLarge  = errors.New("console: image exceeds the size limit")
	ErrUnknownEntity = errors.New("console: entity not present in the current snapshot")
)
