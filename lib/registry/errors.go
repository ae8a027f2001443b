// Copyright 2026 The Luckee Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"

	"github.com/luckee-foundation/luckee/lib/schema"
)

// Code classifies a registry failure. The string form travels in host
// responses.
type Code string

const (
	CodeNotFound      Code = "not_found"
	CodeUnauthorized  Code = "unauthorized"
	CodeAlreadyExists Code = "already_exists"
	CodeInvalidRecipe Code = "invalid_recipe"
	CodeInvalidInput  Code = "invalid_input"
	CodeLimitExceeded Code = "limit_exceeded"
	CodePaused        Code = "paused"
)

// Mismatch describes why a set of synthesis inputs does not satisfy a
// recipe: Kind was supplied Actual times where the recipe requires
// exactly Expected (zero for a kind the recipe does not use).
type Mismatch struct {
	Kind     schema.Kind `json:"kind"`
	Expected uint32      `json:"expected"`
	Actual   uint32      `json:"actual"`
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("%s: %d supplied, %d required", m.Kind, m.Actual, m.Expected)
}

// Error is the error type every registry operation fails with. Storage
// failures are returned unwrapped from kvstore instead.
type Error struct {
	Code     Code
	Message  string
	Mismatch *Mismatch
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// Is matches the code sentinels below: errors.Is(err, ErrNotFound) is
// true for every not_found error regardless of message.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*Error)
	return ok && sentinel.Message == "" && sentinel.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound}
	ErrUnauthorized  = &Error{Code: CodeUnauthorized}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists}
	ErrInvalidRecipe = &Error{Code: CodeInvalidRecipe}
	ErrInvalidInput  = &Error{Code: CodeInvalidInput}
	ErrLimitExceeded = &Error{Code: CodeLimitExceeded}
	ErrPaused        = &Error{Code: CodePaused}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the registry code carried by err, or "" when err is
// not a registry error.
func CodeOf(err error) Code {
	var registryErr *Error
	if errors.As(err, &registryErr) {
		return registryErr.Code
	}
	return ""
}

// MismatchOf returns the exact-match failure detail attached to an
// invalid_recipe error from Synthesize.
func MismatchOf(err error) (*Mismatch, bool) {
	var registryErr *Error
	if errors.As(err, &registryErr) && registryErr.Mismatch != nil {
		return registryErr.Mismatch, true
	}
	return nil, false
}

// recipeError maps a schema validation failure into the taxonomy.
// Empty and self-referential input lists are caller mistakes; the rest
// describe a malformed recipe.
func recipeError(err error) *Error {
	switch {
	case errors.Is(err, schema.ErrEmptyInputs), errors.Is(err, schema.ErrSelfReferential):
		return newError(CodeInvalidInput, "%v", err)
	default:
		return newError(CodeInvalidRecipe, "%v", err)
	}
}
