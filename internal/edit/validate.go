package edit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOperation indicates an operation carries out-of-range or
// missing values.
var ErrInvalidOperation = errors.New("invalid operation")

var validate = validator.New()

// Validate checks an operation's payload before it is applied.
func Validate(op Operation) error {
	if op == nil {
		return fmt.Errorf("%w: nil operation", ErrInvalidOperation)
	}

	if c, ok := op.(*Composite); ok {
		if c.IsEmpty() {
			return fmt.Errorf("%w: empty composite", ErrInvalidOperation)
		}
		for i, child := range c.Ops {
			if err := Validate(child); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
		return nil
	}

	if err := validate.Struct(op); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrInvalidOperation, op.Kind(), formatValidationError(err))
	}

	if s, ok := op.(ModifySignal); ok && s.New != nil {
		if err := validate.Struct(s.New); err != nil {
			return fmt.Errorf("%w: %s: %s", ErrInvalidOperation, op.Kind(), formatValidationError(err))
		}
	}
	return nil
}

// formatValidationError joins field errors into one readable message.
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
