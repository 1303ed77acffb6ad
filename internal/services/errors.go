package services

import (
	"errors"

	"github.com/carlosrabelo/vlansync/internal/transport"
)

// ErrorKindValidation is the SyncResult.ErrorKind of input rejected before
// any device contact. Device failures use transport.Kind names.
const ErrorKindValidation = "validation"

// ErrValidation is matched by every ValidationError
var ErrValidation = errors.New("validation error")

// ValidationError reports input that was rejected without contacting the switch
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var (
	ErrMissingConnectionData = &ValidationError{Message: "missing connection data"}
	ErrNoValidVLAN           = &ValidationError{Message: "no valid VLAN loaded"}
)

// errorKind names the failure class reported in SyncResult.ErrorKind
func errorKind(err error) string {
	if errors.Is(err, ErrValidation) {
		return ErrorKindValidation
	}
	return transport.Classify(err).Kind.String()
}
