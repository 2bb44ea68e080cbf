package kit

import "strings"

// RequireNotBlank checks that a value contains something other than whitespace.
func RequireNotBlank(value, errMsg string) *CommandError {
	if strings.TrimSpace(value) == "" {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequirePositive checks that an input value is greater than zero.
func RequirePositive(value int, errMsg string) *CommandError {
	if value <= 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequireAtMost checks that value does not exceed limit.
func RequireAtMost(value, limit int, errMsg string) *CommandError {
	if value > limit {
		return NewFailedPrecondition(errMsg)
	}
	return nil
}

// RequireNotEmpty checks that a slice has at least one element.
func RequireNotEmpty[T any](items []T, errMsg string) *CommandError {
	if len(items) == 0 {
		return NewFailedPrecondition(errMsg)
	}
	return nil
}

// RequireOneOf checks that value is one of the allowed values.
func RequireOneOf[T comparable](value T, allowed []T, errMsg string) *CommandError {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return NewInvalidArgument(errMsg)
}

// RequireStatus checks that the current status matches the expected value.
func RequireStatus[T comparable](actual, expected T, errMsg string) *CommandError {
	if actual != expected {
		return NewFailedPrecondition(errMsg)
	}
	return nil
}

// FirstError returns the first non-nil CommandError, or nil.
//
// Lets handlers run a list of checks in order:
//
//	if err := kit.FirstError(
//	    kit.RequireNotBlank(id, ErrMsgProductIDRequired),
//	    kit.RequirePositive(qty, ErrMsgQuantityPositive),
//	); err != nil {
//	    return state, err
//	}
func FirstError(checks ...*CommandError) error {
	for _, c := range checks {
		if c != nil {
			return c
		}
	}
	return nil
}
