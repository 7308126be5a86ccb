package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors used as the Unwrap targets of every error type in this package.
// Callers classify failures with errors.Is against these values.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrVersionIsInvalid  = errors.New("version is invalid")
	ErrAuthorization     = errors.New("not authorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrQuotaExceeded     = errors.New("quota exceeded")
)

// ObjectNotFoundError indicates that a requested object does not exist in storage.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without an underlying cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping an underlying cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError indicates that a supplied value failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without an underlying cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping an underlying cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError indicates that a numeric value is outside its allowed bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError without an underlying cause.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError wrapping an underlying cause.
func NewValueIsOutOfRangeErrorWithCause(paramName string, value, minValue, maxValue any, cause error) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v (cause: %s)",
			ErrValueIsInvalid, e.Value, e.ParamName, e.Min, e.Max, e.Cause)
	}
	return fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, e.Value, e.ParamName, e.Min, e.Max)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError indicates that a required value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without an underlying cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping an underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionIsInvalidError indicates that an aggregate was modified concurrently:
// the version observed at read time no longer matches the persisted one.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewVersionIsInvalidError creates a VersionIsInvalidError without an underlying cause.
func NewVersionIsInvalidError(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

// NewVersionIsInvalidErrorWithCause creates a VersionIsInvalidError wrapping an underlying cause.
func NewVersionIsInvalidErrorWithCause(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrVersionIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName)
}

func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

// AuthorizationError indicates that an actor's role does not permit the attempted action.
// The action is rejected before any state change.
type AuthorizationError struct {
	Role   string
	Action string
	Cause  error
}

// NewAuthorizationError creates an AuthorizationError without an underlying cause.
func NewAuthorizationError(role, action string) *AuthorizationError {
	return &AuthorizationError{Role: role, Action: action}
}

// NewAuthorizationErrorWithCause creates an AuthorizationError wrapping an underlying cause.
func NewAuthorizationErrorWithCause(role, action string, cause error) *AuthorizationError {
	return &AuthorizationError{Role: role, Action: action, Cause: cause}
}

func (e *AuthorizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: role %s may not %s (cause: %s)", ErrAuthorization, e.Role, e.Action, e.Cause)
	}
	return fmt.Sprintf("%s: role %s may not %s", ErrAuthorization, e.Role, e.Action)
}

func (e *AuthorizationError) Unwrap() error {
	return ErrAuthorization
}

// InvalidStateError indicates that an operation is not allowed from the object's
// current state, e.g. transitioning an order that is already terminal.
type InvalidStateError struct {
	ParamName string
	State     string
	Cause     error
}

// NewInvalidStateError creates an InvalidStateError without an underlying cause.
func NewInvalidStateError(paramName, state string) *InvalidStateError {
	return &InvalidStateError{ParamName: paramName, State: state}
}

// NewInvalidStateErrorWithCause creates an InvalidStateError wrapping an underlying cause.
func NewInvalidStateErrorWithCause(paramName, state string, cause error) *InvalidStateError {
	return &InvalidStateError{ParamName: paramName, State: state, Cause: cause}
}

func (e *InvalidStateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s is %s (cause: %s)", ErrInvalidState, e.ParamName, e.State, e.Cause)
	}
	return fmt.Sprintf("%s: %s is %s", ErrInvalidState, e.ParamName, e.State)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// QuotaExceededError indicates that a restaurant's subscription plan has no
// remaining order quota. Carries the plan and the remaining count so the caller
// can surface both.
type QuotaExceededError struct {
	RestaurantID string
	Plan         string
	Remaining    int
	Cause        error
}

// NewQuotaExceededError creates a QuotaExceededError without an underlying cause.
func NewQuotaExceededError(restaurantID, plan string, remaining int) *QuotaExceededError {
	return &QuotaExceededError{RestaurantID: restaurantID, Plan: plan, Remaining: remaining}
}

// NewQuotaExceededErrorWithCause creates a QuotaExceededError with an underlying cause.
func NewQuotaExceededErrorWithCause(restaurantID, plan string, remaining int, cause error) *QuotaExceededError {
	return &QuotaExceededError{RestaurantID: restaurantID, Plan: plan, Remaining: remaining, Cause: cause}
}

func (e *QuotaExceededError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: restaurant %s on plan %s has %d orders remaining (cause: %s)",
			ErrQuotaExceeded, e.RestaurantID, e.Plan, e.Remaining, e.Cause)
	}
	return fmt.Sprintf("%s: restaurant %s on plan %s has %d orders remaining",
		ErrQuotaExceeded, e.RestaurantID, e.Plan, e.Remaining)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}
