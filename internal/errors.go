// eldist: a tool for estimating evolutionary distances between unaligned sequences.
// Copyright (c) 2019-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/eldist/blob/master/LICENSE.txt>.

package internal

import "fmt"

// Kind classifies the errors raised by the eldist packages.
type Kind int

const (
	// Input marks malformed or insufficient sequence input.
	Input Kind = iota

	// Config marks model or search parameters outside their admissible ranges.
	Config

	// Numeric marks a numerical breakdown, such as a failed
	// eigendecomposition or a diverging optimizer.
	Numeric

	// NotFound marks lookups of unknown sequence names or identifiers.
	NotFound

	// Internal marks broken invariants.
	Internal
)

// Error is the error value raised by the eldist packages. It travels as
// a panic through the core packages and is turned back into an error at
// the api and cmd boundaries.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// RaiseInput panics with an Input error.
func RaiseInput(format string, args ...interface{}) {
	panic(&Error{Kind: Input, Message: fmt.Sprintf(format, args...)})
}

// RaiseConfig panics with a Config error.
func RaiseConfig(format string, args ...interface{}) {
	panic(&Error{Kind: Config, Message: fmt.Sprintf(format, args...)})
}

// RaiseNumeric panics with a Numeric error.
func RaiseNumeric(format string, args ...interface{}) {
	panic(&Error{Kind: Numeric, Message: fmt.Sprintf(format, args...)})
}

// RaiseNotFound panics with a NotFound error.
func RaiseNotFound(format string, args ...interface{}) {
	panic(&Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)})
}

// RaiseInternal panics with an Internal error.
func RaiseInternal(format string, args ...interface{}) {
	panic(&Error{Kind: Internal, Message: fmt.Sprintf(format, args...)})
}

// RecoverTo converts a panic raised by the eldist packages back into an
// error. Use it in a defer at a boundary that must not panic.
func RecoverTo(err *error) {
	if x := recover(); x != nil {
		switch e := x.(type) {
		case *Error:
			*err = e
		case error:
			*err = e
		default:
			*err = fmt.Errorf("%v", x)
		}
	}
}
