package protocol

// Sequence produces the sequence number and its bitwise complement for
// outgoing frames. Numbering restarts for every file transfer: the head
// frame consumes the first value, each data frame the next, and the tail
// frame the last. The counter wraps modulo 256 even though the wire field
// is 16 bits wide; the high byte is always zero in practice.
//
// The zero value is ready to use and starts at 0.
type Sequence struct {
	n uint16
}

// NewSequence returns a counter starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the current sequence number and its 16-bit bitwise
// complement, then advances the counter.
func (s *Sequence) Next() (seq, complement uint16) {
	seq = s.n
	s.n = (s.n + 1) & 0xFF
	return seq, ^seq
}
