package errors

import "fmt"

// ErrorCategory separates failures that mean different things to the
// scheduling loop: exchange rejections, network unreachability,
// configuration mistakes and best-effort notification failures.
type ErrorCategory string

const (
	ErrorCategoryExchange      ErrorCategory = "EXCHANGE"
	ErrorCategoryNetwork       ErrorCategory = "NETWORK"
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryNotification  ErrorCategory = "NOTIFICATION"
	ErrorCategoryState         ErrorCategory = "STATE"
)

// BotError is a categorized error with the component and operation
// that produced it.
type BotError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether the bot should refuse to continue. Only
// configuration mistakes qualify; everything else is retried on the
// next scheduled cycle.
func (e *BotError) IsFatal() bool {
	return e.Category == ErrorCategoryConfiguration
}

// Wrap attaches category and context to an existing error.
func Wrap(err error, category ErrorCategory, component, operation string) *BotError {
	if err == nil {
		return nil
	}
	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// NewConfigurationError reports an invalid setting detected at startup.
func NewConfigurationError(component, message string) *BotError {
	return &BotError{
		Category:  ErrorCategoryConfiguration,
		Component: component,
		Operation: "validate",
		Message:   message,
	}
}

// NewValidationError reports rejected input.
func NewValidationError(component, operation, message string) *BotError {
	return &BotError{
		Category:  ErrorCategoryValidation,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}
