// SPDX-License-Identifier: MIT

// Package validate accumulates configuration validation errors so a bad
// file is reported in one pass.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/eventd/internal/domain/event/model"
)

// Error is one rejected field.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError is every problem found by one Validator.
type ValidationError struct {
	errors []Error
}

// Errors returns the individual field errors.
func (e ValidationError) Errors() []Error { return e.errors }

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the field errors to errors.As.
func (e ValidationError) Unwrap() []error {
	out := make([]error, len(e.errors))
	for i, err := range e.errors {
		out[i] = err
	}
	return out
}

// Validator collects field errors. The zero value is ready to use.
type Validator struct {
	errors []Error
}

func New() *Validator { return &Validator{} }

func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

func (v *Validator) IsValid() bool   { return len(v.errors) == 0 }
func (v *Validator) Errors() []Error { return v.errors }

// Err snapshots the collected errors, or returns nil.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return ValidationError{errors: append([]Error(nil), v.errors...)}
}

// Custom records err under field when it is non-nil. Joined errors are
// flattened to one message.
func (v *Validator) Custom(field string, value any, err error) {
	if err != nil {
		v.AddError(field, strings.ReplaceAll(err.Error(), "\n", "; "), value)
	}
}

// Present records a missing required value.
func (v *Validator) Present(field string, ok bool) {
	if !ok {
		v.AddError(field, "value is required", nil)
	}
}

func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field, fmt.Sprintf("value must be one of %v, got %q", allowed, value), value)
}

// Range checks minVal <= value <= maxVal.
func (v *Validator) Range(field string, value, minVal, maxVal int) {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("value must be between %d and %d, got %d", minVal, maxVal, value), value)
	}
}

func (v *Validator) Positive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("value must be positive, got %d", value), value)
	}
}

func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.AddError(field, fmt.Sprintf("value cannot be negative, got %d", value), value)
	}
}

func (v *Validator) PositiveDuration(field string, d time.Duration) {
	if d <= 0 {
		v.AddError(field, fmt.Sprintf("duration must be positive, got %s", d), d)
	}
}

func (v *Validator) NonNegativeDuration(field string, d time.Duration) {
	if d < 0 {
		v.AddError(field, fmt.Sprintf("duration cannot be negative, got %s", d), d)
	}
}

// Window checks 0 <= start < end <= limit, the shape of a wave inside the
// play phase.
func (v *Validator) Window(field string, start, end, limit time.Duration) {
	switch {
	case start < 0:
		v.AddError(field+".start", fmt.Sprintf("duration cannot be negative, got %s", start), start)
	case end <= start:
		v.AddError(field+".end", "end must be after start", end)
	case end > limit:
		v.AddError(field+".end", fmt.Sprintf("end lies beyond %s", limit), end)
	}
}

// Inside checks that p lies in a non-empty area.
func (v *Validator) Inside(field string, p model.Point, area model.Area) {
	if area.Empty() {
		v.AddError(field, "area must not be empty", area)
		return
	}
	if !area.Contains(p) {
		v.AddError(field, fmt.Sprintf("point (%d,%d) lies outside the area", p.X, p.Y), p)
	}
}

var errLogLevel = errors.New("must be one of debug, info, warn, error")

// LogLevel accepts the levels the daemon exposes in its config.
func (v *Validator) LogLevel(field, value string) {
	lvl, err := zerolog.ParseLevel(value)
	if err != nil || lvl < zerolog.DebugLevel || lvl > zerolog.ErrorLevel {
		v.AddError(field, errLogLevel.Error(), value)
	}
}
