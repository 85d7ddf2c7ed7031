package protocol

// Frame type codes used by the BootROM serial downloader.
// Reply frames carry the request type with the high bit set; all of
// these codes already have it set, so a reply's type byte equals the
// request's. The values are pinned against known-good captures.
const (
	// TypeFrame queries chip capabilities and identity
	TypeFrame = 0xBD

	// HeadFrame announces the length and offset of an upcoming transfer
	HeadFrame = 0xFE

	// DataFrame carries one fixed-size block of image data
	DataFrame = 0xDA

	// TailFrame signals the end of a transfer
	TailFrame = 0xED

	// BoardFrame requests the board parameter value
	BoardFrame = 0xCE
)

// ReplyTypeBit is OR-ed into a request type to form the expected reply type.
const ReplyTypeBit = 0x80

// ChecksumState is the single-byte outcome code the target returns for
// every request: acceptance or protocol-level rejection of the payload.
type ChecksumState byte

const (
	// StateOK indicates the target accepted the frame
	StateOK ChecksumState = 0xAA

	// StateBad indicates the target rejected the frame
	StateBad ChecksumState = 0x55
)

// Frame structure constants.
const (
	// BlockSize is the fixed data frame payload size in bytes.
	// Shorter final blocks are zero-padded to this size before the
	// checksum is computed.
	BlockSize = 1024

	// FrameOverhead is the request framing overhead in bytes:
	// TYPE(1) + SEQ(2) + SEQ_COMPLEMENT(2) + CHECKSUM(2)
	FrameOverhead = 7

	// ReplyOverhead is the data-form reply overhead in bytes:
	// TYPE(1) + CHECKSUM(2) + CHECKSUM_STATE(1)
	ReplyOverhead = 4

	// HeadPayloadSize is the head frame payload size:
	// MARKER(1) + LENGTH(4) + OFFSET(4)
	HeadPayloadSize = 9

	// ChipInfoSize is the type frame reply payload size:
	// FLAGS(1) + RESERVED(2) + BOOT_VERSION(4) + SYSTEM_ID(4)
	ChipInfoSize = 11

	// BoardReplySize is the board frame reply payload size:
	// RESERVED(3) + VALUE(4)
	BoardReplySize = 7
)

// headMarker is the first payload byte of every head frame.
const headMarker = 0x01

// Chip info flag bits packed into the first payload byte.
const (
	flagCA        = 1 << 0
	flagTEE       = 1 << 1
	flagMultiform = 1 << 2
)

// Fixed request payloads, pinned against captures of the reference
// tooling. Their meaning is not documented by the vendor.
var (
	typeQueryPayload  = []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	boardQueryPayload = []byte{0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78}
)
