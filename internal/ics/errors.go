package ics

import "errors"

var (
	// ErrNotFound is returned by a Store when the addressed folder or
	// message does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrExists is returned by a Store when a folder name is already taken
	// under the destination parent.
	ErrExists = errors.New("object already exists")

	// ErrBufferTooSmall is returned by GetBuffer when the caller asked for
	// an exact size that cannot hold the next indivisible part of the
	// stream.
	ErrBufferTooSmall = errors.New("buffer too small for the next stream element")

	// ErrUnknownStateTag is returned when a state property is not one of
	// the four change-tracking sets.
	ErrUnknownStateTag = errors.New("unknown state property")
	// ErrStateStream is returned when state stream calls arrive out of
	// order.
	ErrStateStream = errors.New("state stream not open")

	// ErrEnded is returned when data arrives after the root element of an
	// upload was closed.
	ErrEnded = errors.New("transfer already ended")
	// ErrNotConfigured is returned when a transfer is read before anything
	// was materialized into it.
	ErrNotConfigured = errors.New("transfer not configured")
)
