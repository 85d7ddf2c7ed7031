package regbin

import (
	"bytes"
	"fmt"
)

// RegReq is one register write request: a value written to a bit range
// of a 32-bit register at a byte offset from the block base, optionally
// followed by a delay.
//
// Wire layout (big-endian, variable length):
//
//	[OFFSET(1)][VALUE_LEN(3b)|START_BIT(5b)][DELAY_LEN(3b)|BITS_CNT(5b)][VALUE(0-7)][DELAY(0-7)]
type RegReq struct {
	// Offset is the register's byte offset from the block base address
	Offset byte

	// Value is the value to write (ValueLen bytes on the wire)
	Value uint64

	// ValueLen is the encoded value width in bytes (0-7)
	ValueLen int

	// Delay is the post-write delay (DelayLen bytes on the wire)
	Delay uint64

	// DelayLen is the encoded delay width in bytes (0-7)
	DelayLen int

	// StartBit is the first bit of the written range (0-31)
	StartBit int

	// WriteBitsCnt is the written bit count minus one (0-31);
	// writing zero bits makes no sense, so the field is biased
	WriteBitsCnt int
}

// EncodedLen returns the request's size on the wire.
func (r *RegReq) EncodedLen() int {
	return 3 + r.ValueLen + r.DelayLen
}

// ParseRegReq decodes one register request from the start of b.
// Trailing bytes beyond the request are ignored.
func ParseRegReq(b []byte) (*RegReq, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf("register request too short: got %d bytes, minimum is 3", len(b))
	}

	r := &RegReq{
		Offset:       b[0],
		StartBit:     int(b[1] & 0x1F),
		ValueLen:     int(b[1] >> 5 & 0x07),
		WriteBitsCnt: int(b[2] & 0x1F),
		DelayLen:     int(b[2] >> 5 & 0x07),
	}

	if len(b) < r.EncodedLen() {
		return nil, fmt.Errorf("register request truncated: got %d bytes, need %d", len(b), r.EncodedLen())
	}

	r.Value = bigEndianUint(b[3 : 3+r.ValueLen])
	r.Delay = bigEndianUint(b[3+r.ValueLen : 3+r.ValueLen+r.DelayLen])
	return r, nil
}

// bigEndianUint decodes a 0-7 byte big-endian unsigned integer.
func bigEndianUint(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

// RegBlock groups register requests targeting registers at a common
// base address.
//
// Wire layout: [ADDR_BASE(4, big-endian)][PAYLOAD_LEN(1)][REQS...]
type RegBlock struct {
	// AddrBase is the register base address
	AddrBase uint32

	// PayloadLen is the encoded size of the request list in bytes
	PayloadLen int

	// Reqs are the register requests, in execution order
	Reqs []*RegReq
}

// EncodedLen returns the block's size on the wire.
func (b *RegBlock) EncodedLen() int {
	return 5 + b.PayloadLen
}

// ParseRegBlock decodes one register block from the start of b.
func ParseRegBlock(b []byte) (*RegBlock, error) {
	if len(b) < 5 {
		return nil, fmt.Errorf("register block too short: got %d bytes, minimum is 5", len(b))
	}

	blk := &RegBlock{
		AddrBase:   uint32(bigEndianUint(b[0:4])),
		PayloadLen: int(b[4]),
	}
	if len(b) < blk.EncodedLen() {
		return nil, fmt.Errorf("register block truncated: got %d bytes, need %d", len(b), blk.EncodedLen())
	}

	payload := b[5:blk.EncodedLen()]
	for pos := 0; pos < len(payload); {
		req, err := ParseRegReq(payload[pos:])
		if err != nil {
			return nil, fmt.Errorf("request at block offset %d: %w", pos, err)
		}
		blk.Reqs = append(blk.Reqs, req)
		pos += req.EncodedLen()
	}

	return blk, nil
}

// RegRegion is a named collection of register blocks, one per hardware
// domain page.
//
// Wire layout: [FLAGS(2, big-endian)][PAYLOAD_LEN(2, big-endian)][BLOCKS...]
type RegRegion struct {
	// Flags is the region identifier field; its exact meaning is
	// undocumented, but it is never zero in a valid region
	Flags uint16

	// PayloadLen is the encoded size of the block list in bytes
	PayloadLen int

	// Blocks are the register blocks, in execution order
	Blocks []*RegBlock
}

// EncodedLen returns the region's size on the wire.
func (r *RegRegion) EncodedLen() int {
	return 4 + r.PayloadLen
}

// ParseRegRegion decodes one region from the start of b.
func ParseRegRegion(b []byte) (*RegRegion, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("region too short: got %d bytes, minimum is 4", len(b))
	}

	region := &RegRegion{
		Flags:      uint16(bigEndianUint(b[0:2])),
		PayloadLen: int(bigEndianUint(b[2:4])),
	}
	if len(b) < region.EncodedLen() {
		return nil, fmt.Errorf("region truncated: got %d bytes, need %d", len(b), region.EncodedLen())
	}

	payload := b[4:region.EncodedLen()]
	for pos := 0; pos < len(payload); {
		blk, err := ParseRegBlock(payload[pos:])
		if err != nil {
			return nil, fmt.Errorf("block at region offset %d: %w", pos, err)
		}
		region.Blocks = append(region.Blocks, blk)
		pos += blk.EncodedLen()
	}

	return region, nil
}

// RegBin is a whole bootreg file: three NUL-terminated identification
// strings followed by a padding NUL and the region list. The list ends
// where a region's flags low byte would be zero.
type RegBin struct {
	// Version is the regbin format version string
	Version string

	// BuildTime is the build timestamp string
	BuildTime string

	// BoardType names the board the registers configure
	BoardType string

	// Regions are the register regions, in execution order
	Regions []*RegRegion
}

// Parse decodes a complete bootreg file.
func Parse(b []byte) (*RegBin, error) {
	var rb RegBin
	var err error

	if rb.Version, b, err = cutString(b, "version"); err != nil {
		return nil, err
	}
	if rb.BuildTime, b, err = cutString(b, "build time"); err != nil {
		return nil, err
	}
	if rb.BoardType, b, err = cutString(b, "board type"); err != nil {
		return nil, err
	}
	if len(b) < 1 {
		return nil, fmt.Errorf("missing header padding")
	}
	b = b[1:] // padding NUL after the header strings

	for pos := 0; pos+1 < len(b) && b[pos+1] != 0; {
		region, err := ParseRegRegion(b[pos:])
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", len(rb.Regions), err)
		}
		rb.Regions = append(rb.Regions, region)
		pos += region.EncodedLen()
	}

	return &rb, nil
}

// cutString takes the next NUL-terminated string off b.
func cutString(b []byte, field string) (string, []byte, error) {
	s, rest, found := bytes.Cut(b, []byte{0})
	if !found {
		return "", nil, fmt.Errorf("unterminated %s string", field)
	}
	return string(s), rest, nil
}
