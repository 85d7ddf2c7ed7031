package downloader

import (
	"fmt"
	"time"
)

// TransportError indicates an I/O failure on the serial channel.
// It is fatal: the session and usually the port must be recreated.
type TransportError struct {
	// Op is the operation that was in flight
	Op string

	// Err is the underlying I/O error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError indicates that no reply arrived within the configured
// bound. The protocol core performs no retries; the caller may retry
// with a fresh session.
type TimeoutError struct {
	// Op is the operation that was awaiting a reply
	Op string

	// Timeout is the configured reply timeout
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no reply to %s within %v", e.Op, e.Timeout)
}

// RejectedError indicates that the target answered with a BAD checksum
// state: the target itself refused the data. It is fatal to the current
// transfer and no further frames are sent.
type RejectedError struct {
	// Op is the rejected operation, e.g. "data frame 2"
	Op string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("target rejected %s (checksum state BAD)", e.Op)
}

// UnsupportedChipError indicates that the queried chip cannot be flashed
// by this library. It is raised right after the capability query, before
// any image data is transferred.
type UnsupportedChipError struct {
	// Reason names the unsupported capability
	Reason string
}

func (e *UnsupportedChipError) Error() string {
	return "unsupported chip: " + e.Reason
}

// TransferError wraps a failure inside one region transfer with enough
// context to report a precise message: the region and the byte offset
// within it at which the transfer stopped.
type TransferError struct {
	// Region is the region being transferred
	Region Region

	// Offset is the byte offset within the region data
	Offset uint32

	// Err is the underlying error
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s transfer failed at offset 0x%X: %v", e.Region, e.Offset, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
