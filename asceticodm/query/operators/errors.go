package operators

import (
	"errors"
	"fmt"
)

var ErrTypeMismatch = errors.New("operators: type mismatch")

// TypeMismatchError reports operands that cannot take part in an ordering
// or arithmetic operation together.
type TypeMismatchError struct {
	Operator Operator
	Left     any
	Right    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("operator \"%s\" is not supported for %T and %T", e.Operator, e.Left, e.Right)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
