// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation marks a record that violates an invariant. Such records
// are never sent to the store.
var ErrValidation = errors.New("validation failed")

// ValidationError carries the per-field messages of a failed validation.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// wrapValidation converts ozzo field errors into a ValidationError. Rule
// execution failures (validation.InternalError) pass through unchanged.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}
	return err
}
