package scan

import (
	"fmt"
	"strconv"
	"strings"

	"stockscan/internal/services"
)

// InputError is a locally rejected form field. Its message is safe to show
// on the status line.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Unwrap classifies input errors as validation failures.
func (e *InputError) Unwrap() error { return services.ErrValidation }

// ParseProjectID accepts a non-negative decimal integer of at most maxDigits
// digits.
func ParseProjectID(input string, maxDigits int) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, &InputError{Message: MsgProjectNumeric}
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return 0, &InputError{Message: MsgProjectNumeric}
		}
	}
	if maxDigits > 0 && len(input) > maxDigits {
		return 0, &InputError{Message: fmt.Sprintf("project id must be at most %d digits", maxDigits)}
	}
	id, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		return 0, &InputError{Message: MsgProjectNumeric}
	}
	return id, nil
}

// CoerceQuantity parses input as a positive integer, falling back to 1.
func CoerceQuantity(input string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || qty <= 0 {
		return 1
	}
	return qty
}
