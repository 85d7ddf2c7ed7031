package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeFrame constructs a request frame.
//
// Frame structure (all multi-byte fields big-endian):
//
//	[TYPE][SEQ(2)][SEQ_COMPLEMENT(2)][PAYLOAD...][CHECKSUM(2)]
//
// The sequence complement is derived from seq; the checksum covers
// everything before the checksum field.
func EncodeFrame(frameType byte, seq uint16, payload []byte) []byte {
	frame := make([]byte, 0, FrameOverhead+len(payload))

	frame = append(frame, frameType)
	frame = binary.BigEndian.AppendUint16(frame, seq)
	frame = binary.BigEndian.AppendUint16(frame, ^seq)
	frame = append(frame, payload...)

	return binary.BigEndian.AppendUint16(frame, Checksum(frame))
}

// DecodeFrame parses a request frame, validating the sequence complement
// and the checksum. It is the inverse of EncodeFrame and is primarily
// useful for target-side tooling and tests.
func DecodeFrame(raw []byte) (frameType byte, seq uint16, payload []byte, err error) {
	if len(raw) < FrameOverhead {
		return 0, 0, nil, &FramingError{
			Reason: fmt.Sprintf("frame too short: got %d bytes, minimum is %d", len(raw), FrameOverhead),
		}
	}

	frameType = raw[0]
	seq = binary.BigEndian.Uint16(raw[1:3])
	complement := binary.BigEndian.Uint16(raw[3:5])
	if complement != ^seq {
		return 0, 0, nil, &FramingError{
			Reason: fmt.Sprintf("sequence complement mismatch: seq=0x%04X complement=0x%04X", seq, complement),
		}
	}

	body := raw[:len(raw)-2]
	want := binary.BigEndian.Uint16(raw[len(raw)-2:])
	if got := Checksum(body); got != want {
		return 0, 0, nil, &ChecksumError{Expected: want, Actual: got}
	}

	return frameType, seq, raw[5 : len(raw)-2], nil
}

// BuildTypeFrame constructs the chip capability query.
// The query payload is a fixed byte string; its reply carries ChipInfo.
func BuildTypeFrame() []byte {
	return EncodeFrame(TypeFrame, 0, typeQueryPayload)
}

// BuildBoardFrame constructs the board parameter query.
// Its reply carries the 32-bit board value used to locate the
// parameter area.
func BuildBoardFrame() []byte {
	return EncodeFrame(BoardFrame, 0, boardQueryPayload)
}

// BuildHeadFrame constructs the frame announcing a transfer of length
// bytes destined for the given target offset. length counts the padded
// payload, so it is always a multiple of BlockSize (or zero).
func BuildHeadFrame(seq uint16, length, offset uint32) []byte {
	payload := make([]byte, 0, HeadPayloadSize)
	payload = append(payload, headMarker)
	payload = binary.BigEndian.AppendUint32(payload, length)
	payload = binary.BigEndian.AppendUint32(payload, offset)

	return EncodeFrame(HeadFrame, seq, payload)
}

// BuildDataFrame constructs a data frame carrying one block.
// The block must be exactly BlockSize bytes; callers zero-pad a short
// final block before building the frame.
func BuildDataFrame(seq uint16, block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("block must be exactly %d bytes, got %d", BlockSize, len(block))
	}

	return EncodeFrame(DataFrame, seq, block), nil
}

// BuildTailFrame constructs the empty frame that ends a transfer.
func BuildTailFrame(seq uint16) []byte {
	return EncodeFrame(TailFrame, seq, nil)
}
