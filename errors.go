// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package macaroni

import (
	"errors"
	"fmt"
)

// Malformed Markdown never produces an error.
// The errors below indicate either a configured limit
// or a bug in the parser.
var (
	// ErrResourceLimit is matched by errors returned
	// when a document exceeds a [Parser] limit.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrInternal is matched by errors that indicate a violated parser invariant.
	ErrInternal = errors.New("internal parser error")

	// ErrOffsetOutOfRange is returned by [LineIndex] methods
	// when given an offset outside of the source.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)

// LimitError is returned by [Parser.Parse]
// when a document exceeds one of the parser's configured limits.
type LimitError struct {
	// Limit is the name of the exceeded limit,
	// like "document size" or "nesting depth".
	Limit string
	// Max is the configured maximum.
	Max int
	// Offset is the byte offset in the source where the limit was hit.
	Offset int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s exceeds %d at offset %d", e.Limit, e.Max, e.Offset)
}

// Is reports whether target is [ErrResourceLimit].
func (e *LimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// InternalError describes a violated parser invariant.
// It always matches [ErrInternal].
type InternalError struct {
	Op  string
	Err error
}

func internalError(op string, err error) *InternalError {
	return &InternalError{Op: op, Err: err}
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "macaroni: internal error: " + e.Op
	}
	return "macaroni: internal error: " + e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrInternal].
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}
