package downloader

import (
	"errors"
	"io"
	"time"

	"github.com/histb-tools/go-histb/protocol"
)

// errDeadline marks an exhausted reply deadline. Session code converts
// it to a TimeoutError carrying the operation name.
var errDeadline = errors.New("reply deadline exceeded")

// pollInterval is the idle wait between empty transport reads. Serial
// ports with their own read timeout legitimately return (0, nil).
const pollInterval = time.Millisecond

// replyReader scans the raw serial stream for protocol replies. The
// BootROM interleaves console text with protocol frames, so bytes that
// are not part of the awaited reply are forwarded to the console writer
// instead of failing the parse.
type replyReader struct {
	r       io.Reader
	console io.Writer
	buf     [512]byte
	pos, n  int
}

func newReplyReader(r io.Reader, console io.Writer) *replyReader {
	return &replyReader{r: r, console: console}
}

// readByte returns the next raw byte, honoring the deadline. A zero
// deadline blocks indefinitely. io.EOF is passed through for the caller
// to interpret.
func (rr *replyReader) readByte(deadline time.Time) (byte, error) {
	for {
		if rr.pos < rr.n {
			b := rr.buf[rr.pos]
			rr.pos++
			return b, nil
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return 0, errDeadline
		}

		n, err := rr.r.Read(rr.buf[:])
		if n > 0 {
			rr.pos, rr.n = 0, n
			continue
		}
		if err != nil {
			return 0, err
		}
		time.Sleep(pollInterval)
	}
}

// scanStatus waits for a status-only reply: a single checksum state byte.
// Non-state bytes are BootROM console output and go to the console writer.
func (rr *replyReader) scanStatus(deadline time.Time) (protocol.ChecksumState, error) {
	for {
		b, err := rr.readByte(deadline)
		if err != nil {
			return 0, err
		}

		switch protocol.ChecksumState(b) {
		case protocol.StateOK, protocol.StateBad:
			return protocol.ChecksumState(b), nil
		}
		rr.console.Write([]byte{b})
	}
}

// scanReply waits for a data-form reply of the given type byte and total
// size. Bytes preceding the type byte are console output. A reply that
// starts but does not complete before the deadline is a framing error,
// not a timeout: part of the frame was lost.
func (rr *replyReader) scanReply(replyType byte, size int, deadline time.Time) ([]byte, error) {
	for {
		b, err := rr.readByte(deadline)
		if err != nil {
			return nil, err
		}
		if b == replyType {
			raw := make([]byte, size)
			raw[0] = b
			for i := 1; i < size; i++ {
				raw[i], err = rr.readByte(deadline)
				if err != nil {
					if errors.Is(err, errDeadline) || errors.Is(err, io.EOF) {
						return nil, &protocol.FramingError{Reason: "truncated reply"}
					}
					return nil, err
				}
			}
			return raw, nil
		}
		rr.console.Write([]byte{b})
	}
}
