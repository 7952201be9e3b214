package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when coordinates fall outside the document.
	ErrIndexOutOfRange = errors.New("builder: index out of range")
	// ErrNotChoiceField is returned by option operations on fields whose type
	// carries no options.
	ErrNotChoiceField = errors.New("builder: field carries no options")
)

func outOfRange(kind string, index, length int) error {
	return fmt.Errorf("%w: %s index %d not in [0,%d)", ErrIndexOutOfRange, kind, index, length)
}
