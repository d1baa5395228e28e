package model

import (
	"fmt"
	"strings"
)

// NotFoundError is an error signaling that something was not found in the
// database
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling that a unique constraint would be violated
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// LockedSettingError is returned when deleting a locked setting
type LockedSettingError string

// Error implements the error interface
func (e LockedSettingError) Error() string {
	return string(e)
}

// LockedSettingErrorFmt returns a LockedSettingError from the passed format string and parameters
func LockedSettingErrorFmt(format string, params ...any) LockedSettingError {
	return LockedSettingError(fmt.Sprintf(format, params...))
}

// RuleFailure describes a single validation rule a value did not satisfy
type RuleFailure struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned when a value fails the validation rules of a
// setting. Nothing is written when it is returned.
type ValidationError struct {
	Key      string        `json:"key"`
	Failures []RuleFailure `json:"failures"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("validation failed for '%s': %s", e.Key, strings.Join(msgs, "; "))
}

// Rules returns the names of the failed rules
func (e *ValidationError) Rules() []string {
	rules := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		rules[i] = f.Rule
	}
	return rules
}
