package protocol

import (
	"encoding/binary"
	"errors"
	"testing"
)

// buildReply assembles a data-form reply frame for a request type.
func buildReply(reqType byte, payload []byte, state ChecksumState) []byte {
	raw := append([]byte{reqType | ReplyTypeBit}, payload...)
	raw = binary.BigEndian.AppendUint16(raw, Checksum(raw))
	return append(raw, byte(state))
}

func chipInfoPayload(flags byte, bootVersion, systemID uint32) []byte {
	payload := []byte{flags, 0x00, 0x00}
	payload = binary.BigEndian.AppendUint32(payload, bootVersion)
	return binary.BigEndian.AppendUint32(payload, systemID)
}

func TestParseReply(t *testing.T) {
	payload := chipInfoPayload(0x00, 0x00010203, 0x12345678)

	reply, err := ParseReply(TypeFrame, ChipInfoSize, buildReply(TypeFrame, payload, StateOK))
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if reply.Type != TypeFrame|ReplyTypeBit {
		t.Errorf("type = 0x%02X, want 0x%02X", reply.Type, TypeFrame|ReplyTypeBit)
	}
	if reply.State != StateOK {
		t.Errorf("state = 0x%02X, want StateOK", byte(reply.State))
	}
	if len(reply.Payload) != ChipInfoSize {
		t.Errorf("payload length = %d, want %d", len(reply.Payload), ChipInfoSize)
	}
}

func TestParseReplyBadStateIsNotAnError(t *testing.T) {
	// A BAD checksum state is the target's answer, not a decode failure;
	// it must surface through Reply.State, distinct from framing errors.
	payload := chipInfoPayload(0x00, 0, 0)

	reply, err := ParseReply(TypeFrame, ChipInfoSize, buildReply(TypeFrame, payload, StateBad))
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if reply.State != StateBad {
		t.Errorf("state = 0x%02X, want StateBad", byte(reply.State))
	}
}

func TestParseReplyErrors(t *testing.T) {
	payload := chipInfoPayload(0x01, 1, 2)
	valid := buildReply(TypeFrame, payload, StateOK)

	tests := []struct {
		name    string
		raw     []byte
		mutate  func([]byte)
		framing bool // true: FramingError, false: ChecksumError
	}{
		{
			name:    "short frame",
			raw:     valid[:5],
			framing: true,
		},
		{
			name:    "wrong type byte",
			raw:     append([]byte{}, valid...),
			mutate:  func(b []byte) { b[0] = 0x42 },
			framing: true,
		},
		{
			name:    "corrupted payload",
			raw:     append([]byte{}, valid...),
			mutate:  func(b []byte) { b[3] ^= 0xFF },
			framing: false,
		},
		{
			name:    "invalid checksum state",
			raw:     append([]byte{}, valid...),
			mutate:  func(b []byte) { b[len(b)-1] = 0x13 },
			framing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if tt.mutate != nil {
				tt.mutate(raw)
			}

			_, err := ParseReply(TypeFrame, ChipInfoSize, raw)
			if err == nil {
				t.Fatal("expected error")
			}

			var fe *FramingError
			var ce *ChecksumError
			if tt.framing {
				if !errors.As(err, &fe) {
					t.Errorf("error = %v, want FramingError", err)
				}
			} else {
				if !errors.As(err, &ce) {
					t.Errorf("error = %v, want ChecksumError", err)
				}
			}
		})
	}
}

func TestParseChipInfo(t *testing.T) {
	tests := []struct {
		name        string
		flags       byte
		ca, tee, mf bool
	}{
		{"no flags", 0x00, false, false, false},
		{"ca only", 0x01, true, false, false},
		{"tee only", 0x02, false, true, false},
		{"multiform only", 0x04, false, false, true},
		{"all flags", 0x07, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseChipInfo(chipInfoPayload(tt.flags, 0x00010203, 0x12345678))
			if err != nil {
				t.Fatalf("ParseChipInfo: %v", err)
			}
			if info.CA != tt.ca || info.TEE != tt.tee || info.Multiform != tt.mf {
				t.Errorf("flags = %t/%t/%t, want %t/%t/%t",
					info.CA, info.TEE, info.Multiform, tt.ca, tt.tee, tt.mf)
			}
			if info.BootVersion != 0x00010203 {
				t.Errorf("boot version = 0x%08X, want 0x00010203", info.BootVersion)
			}
			if info.SystemID != 0x12345678 {
				t.Errorf("system id = 0x%08X, want 0x12345678", info.SystemID)
			}
		})
	}

	t.Run("wrong length", func(t *testing.T) {
		if _, err := ParseChipInfo(make([]byte, 10)); err == nil {
			t.Fatal("expected error for short payload")
		}
	})
}

func TestParseBoardReply(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0xDE, 0xAD, 0xBE, 0xEF}

	value, err := ParseBoardReply(payload)
	if err != nil {
		t.Fatalf("ParseBoardReply: %v", err)
	}
	if value != 0xDEADBEEF {
		t.Errorf("value = 0x%08X, want 0xDEADBEEF", value)
	}

	if _, err := ParseBoardReply(payload[:6]); err == nil {
		t.Fatal("expected error for short payload")
	}
}
