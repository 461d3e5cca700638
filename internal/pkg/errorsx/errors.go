package errorsx

import (
	"errors"
	"fmt"
)

var (
	// InvalidArgument indicates a required argument was missing or malformed
	InvalidArgument = errors.New("invalid argument")
	// Unsupported indicates the operation cannot run in the current host configuration
	Unsupported = errors.New("unsupported operation")
	// CapabilityUnsupported is the reason attached to a negative capability lookup
	CapabilityUnsupported = errors.New("capability unsupported")
)

// ArgumentNullError reports a nil action or delegate passed to a scheduling call
type ArgumentNullError struct {
	Param string
}

func (e *ArgumentNullError) Error() string {
	return fmt.Sprintf("argument null: %s", e.Param)
}

// Is makes ArgumentNullError match InvalidArgument
func (e *ArgumentNullError) Is(target error) bool {
	return target == InvalidArgument
}

// ArgumentNull returns an ArgumentNullError for param
func ArgumentNull(param string) error {
	return &ArgumentNullError{Param: param}
}

// IsArgumentNull reports whether err is (or wraps) an ArgumentNullError
func IsArgumentNull(err error) bool {
	var an *ArgumentNullError
	return errors.As(err, &an)
}

// WrapInvalidArgument marks an error as an invalid argument
func WrapInvalidArgument(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(InvalidArgument, err)
}

// WrapUnsupported marks an error as an unsupported operation
func WrapUnsupported(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(Unsupported, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, InvalidArgument)
}

func IsUnsupported(err error) bool {
	return errors.Is(err, Unsupported)
}

// FaultError carries a panic raised by a caller-supplied action
type FaultError struct {
	Value any
	Stack []byte
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("action faulted: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error
func (e *FaultError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsFault reports whether err carries an action fault
func IsFault(err error) bool {
	var f *FaultError
	return errors.As(err, &f)
}
