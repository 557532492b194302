// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rsc

import "errors"

// Contract errors. Every validation failure wraps one of these with a
// detail message, so callers match them with errors.Is.
var (
	// ErrOutOfRange is returned when an offset or extent leaves the
	// addressed dimension.
	ErrOutOfRange = errors.New("rsc: out of range")

	// ErrIndexOutOfRange is returned for a sub-element index past the
	// visible sub-element count.
	ErrIndexOutOfRange = errors.New("rsc: index out of range")

	// ErrInvalidDimensions is returned for an impossible dimension
	// combination.
	ErrInvalidDimensions = errors.New("rsc: invalid dimensions")

	// ErrInvalidUsage is returned when an operation is not allowed by the
	// usage flags of an allocation.
	ErrInvalidUsage = errors.New("rsc: invalid usage")

	// ErrTypeMismatch is returned when element types of a copy disagree.
	ErrTypeMismatch = errors.New("rsc: type mismatch")

	// ErrInvalidArgument is returned for malformed arguments.
	ErrInvalidArgument = errors.New("rsc: invalid argument")

	// ErrNotResizable is returned by Resize on allocations whose shape
	// cannot change.
	ErrNotResizable = errors.New("rsc: allocation is not resizable")

	// ErrNoMipmaps is returned for mip level operations on a type without
	// a mip chain.
	ErrNoMipmaps = errors.New("rsc: type has no mipmaps")

	// ErrNotAdapter is returned by selection methods on a base allocation.
	ErrNotAdapter = errors.New("rsc: allocation is not an adapter")

	// ErrBufferTooSmall is returned when a caller buffer cannot hold the
	// requested range.
	ErrBufferTooSmall = errors.New("rsc: buffer too small")

	// ErrDestroyed is returned when an object is used after Destroy.
	ErrDestroyed = errors.New("rsc: object destroyed")

	// ErrContextClosed is returned when the owning context is closed.
	ErrContextClosed = errors.New("rsc: context closed")

	// ErrUnsupportedElement is returned when an intrinsic cannot operate
	// on an element.
	ErrUnsupportedElement = errors.New("rsc: unsupported element")

	// ErrDriverUnavailable is returned by NewContext when no driver can be
	// selected or initialized.
	ErrDriverUnavailable = errors.New("rsc: driver unavailable")
)
