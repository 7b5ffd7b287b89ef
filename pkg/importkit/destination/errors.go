package destination

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when writing to a closed destination.
var ErrClosed = errors.New("destination is closed")

// UnsupportedValueError is returned for record values that cannot be encoded.
type UnsupportedValueError struct {
	Field string
	Value any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("field %q: unsupported value of type %T", e.Field, e.Value)
}
