package protocol

import "fmt"

// FramingError indicates a malformed or undersized frame: a wrong type
// byte, a corrupted sequence complement, a truncated reply, or an invalid
// checksum state byte. It points at transport corruption or a protocol
// mismatch and is fatal to the session.
type FramingError struct {
	// Reason describes what was malformed
	Reason string
}

func (e *FramingError) Error() string {
	return "framing error: " + e.Reason
}

// ChecksumError indicates that the recomputed CRC disagrees with the
// checksum embedded in a frame.
type ChecksumError struct {
	// Expected is the checksum carried in the frame
	Expected uint16

	// Actual is the checksum recomputed over the frame contents
	Actual uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: frame carries 0x%04X, computed 0x%04X", e.Expected, e.Actual)
}
