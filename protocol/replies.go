package protocol

import (
	"encoding/binary"
	"fmt"
)

// Reply is a parsed data-form reply frame.
//
// State is exposed regardless of its value: StateBad means the target
// itself refused the request, which is a protocol-level outcome, not a
// transport failure. Callers must check it.
type Reply struct {
	// Type is the reply type byte (request type with the high bit set)
	Type byte

	// Payload is the reply payload, length fixed per request type
	Payload []byte

	// State is the checksum state byte reported by the target
	State ChecksumState
}

// ParseReply parses a data-form reply to a request of type reqType with
// the given expected payload length.
//
// Reply structure (checksum big-endian, over TYPE and PAYLOAD):
//
//	[TYPE][PAYLOAD...][CHECKSUM(2)][CHECKSUM_STATE(1)]
//
// A short or otherwise malformed frame yields a FramingError; a checksum
// disagreement yields a ChecksumError.
func ParseReply(reqType byte, payloadLen int, raw []byte) (*Reply, error) {
	want := payloadLen + ReplyOverhead
	if len(raw) != want {
		return nil, &FramingError{
			Reason: fmt.Sprintf("reply length mismatch: got %d bytes, expected %d", len(raw), want),
		}
	}

	wantType := reqType | ReplyTypeBit
	if raw[0] != wantType {
		return nil, &FramingError{
			Reason: fmt.Sprintf("reply type mismatch: got 0x%02X, expected 0x%02X", raw[0], wantType),
		}
	}

	body := raw[:1+payloadLen]
	expected := binary.BigEndian.Uint16(raw[1+payloadLen : 3+payloadLen])
	if actual := Checksum(body); actual != expected {
		return nil, &ChecksumError{Expected: expected, Actual: actual}
	}

	state := ChecksumState(raw[len(raw)-1])
	if state != StateOK && state != StateBad {
		return nil, &FramingError{
			Reason: fmt.Sprintf("invalid checksum state: 0x%02X", byte(state)),
		}
	}

	return &Reply{
		Type:    raw[0],
		Payload: raw[1 : 1+payloadLen],
		State:   state,
	}, nil
}

// ParseChipInfo parses the type frame reply payload.
//
// Payload format (ChipInfoSize bytes):
//
//	[FLAGS(1)][RESERVED(2)][BOOT_VERSION(4, big-endian)][SYSTEM_ID(4, big-endian)]
func ParseChipInfo(payload []byte) (*ChipInfo, error) {
	if len(payload) != ChipInfoSize {
		return nil, fmt.Errorf("invalid chip info length: got %d bytes, expected %d", len(payload), ChipInfoSize)
	}

	flags := payload[0]
	return &ChipInfo{
		CA:          flags&flagCA != 0,
		TEE:         flags&flagTEE != 0,
		Multiform:   flags&flagMultiform != 0,
		BootVersion: binary.BigEndian.Uint32(payload[3:7]),
		SystemID:    binary.BigEndian.Uint32(payload[7:11]),
	}, nil
}

// ParseBoardReply parses the board frame reply payload and returns the
// 32-bit board value. The value's meaning is target-defined; the protocol
// core only passes it onward to the parameter area selection.
//
// Payload format (BoardReplySize bytes):
//
//	[RESERVED(3)][VALUE(4, big-endian)]
func ParseBoardReply(payload []byte) (uint32, error) {
	if len(payload) != BoardReplySize {
		return 0, fmt.Errorf("invalid board reply length: got %d bytes, expected %d", len(payload), BoardReplySize)
	}

	return binary.BigEndian.Uint32(payload[3:7]), nil
}
