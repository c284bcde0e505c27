// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// reservation service to distinguish between different failure
// scenarios without inspecting driver errors. Any other error returned
// by a repository is a raw store error and is propagated as-is.
package repository

import "errors"

// ErrConflict is returned when a conditional write matched no row,
// e.g. reserving a seat that is no longer available (or does not
// exist). The service translates this into a "seat unavailable"
// outcome.
var ErrConflict = errors.New("conflict")

// ErrSettingsNotFound is returned when the singleton settings row is
// missing. It indicates a provisioning problem rather than an empty
// state.
var ErrSettingsNotFound = errors.New("settings not found")
