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

package cli

import (
	"errors"
	"io/fs"

	"zombiezen.com/go/macaroni"
	"zombiezen.com/go/macaroni/internal/config"
)

// Exit codes for macaroni, following the BSD sysexits conventions.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates a malformed configuration file.
	ExitConfigError = 65

	// ExitResourceLimit indicates that a document exceeded a parser limit.
	ExitResourceLimit = 66

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates a failure reading input or writing output.
	ExitIOError = 74
)

// usageError marks an error caused by invalid command-line usage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// ioError marks an error reading input or writing output.
type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }

// ExitCode returns the process exit code for an error returned from a command.
func ExitCode(err error) int {
	var usageErr *usageError
	var ioErr *ioError
	var pathErr *fs.PathError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usageErr):
		return ExitInvalidUsage
	case errors.Is(err, config.ErrInvalid):
		return ExitConfigError
	case errors.Is(err, macaroni.ErrResourceLimit):
		return ExitResourceLimit
	case errors.Is(err, macaroni.ErrInternal):
		return ExitInternalError
	case errors.As(err, &ioErr), errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
