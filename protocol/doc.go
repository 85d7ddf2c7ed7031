// Package protocol implements the frame codec for the HiSilicon STB
// BootROM serial download protocol.
//
// This package provides functions to build request frames, parse reply
// frames, and compute the pinned CRC-16 frame checksum, plus the
// per-transfer sequence counter.
//
// # Protocol Overview
//
// The downloader uses a packet-based request/reply structure over a raw
// serial byte stream (all multi-byte fields big-endian):
//
//	Request:          [TYPE][SEQ(2)][~SEQ(2)][PAYLOAD...][CHECKSUM(2)]
//	Reply (data):     [TYPE|0x80][PAYLOAD...][CHECKSUM(2)][STATE(1)]
//	Reply (status):   [STATE(1)]
//
// Where:
//   - ~SEQ = 16-bit bitwise complement of SEQ, letting the target detect
//     sequence corruption independently of the payload checksum
//   - CHECKSUM = CRC-16/XMODEM over everything preceding it
//   - STATE = StateOK (0xAA) or StateBad (0x55)
//
// Head, data and tail frames are acknowledged with the status-only reply
// form; type and board frames receive data-form replies.
//
// # Frame Builders
//
// Use the Build* functions to create request frames:
//
//	frame := protocol.BuildTypeFrame()
//	frame := protocol.BuildHeadFrame(seq, length, offset)
//	frame, err := protocol.BuildDataFrame(seq, block)
//	// ... etc
//
// # Reply Parsers
//
// Use ParseReply to validate and extract the payload of a data-form
// reply, then the type-specific parsers:
//
//	reply, err := protocol.ParseReply(protocol.TypeFrame, protocol.ChipInfoSize, raw)
//	info, err := protocol.ParseChipInfo(reply.Payload)
//
// A reply with State == StateBad is a protocol-level rejection by the
// target, reported separately from framing and checksum errors.
//
// # Sequencing
//
// Each file transfer uses its own Sequence counter; numbering is not
// shared across transfers:
//
//	seqs := protocol.NewSequence()
//	seq, _ := seqs.Next() // head frame
//	seq, _ = seqs.Next()  // first data frame
package protocol
