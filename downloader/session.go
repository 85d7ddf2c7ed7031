package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/histb-tools/go-histb/protocol"
)

// Session owns one serial downloader exchange with a BootROM target.
// The transport is exclusively owned by the session for its entire
// lifetime; no other reader or writer may touch it.
//
// The protocol is strictly synchronous: every frame is followed by a
// blocking wait for its reply before the next frame is sent. Context
// cancellation is honored between rounds only — aborting a round in
// flight leaves the target in an undefined state that requires a full
// target-side reset.
type Session struct {
	transport io.ReadWriter
	reader    *replyReader
	config    Config
	chip      *protocol.ChipInfo
}

// Images supplies the region data for a full negotiation sequence.
// Offsets and lengths come from the image layout (see the image package);
// the protocol core does not compute them.
type Images struct {
	// HeadArea is sent first, to offset 0
	HeadArea []byte

	// Auxcode is sent to AuxcodeOffset
	Auxcode       []byte
	AuxcodeOffset uint32

	// SelectParamArea maps the 32-bit board frame reply value to the
	// parameter area offset and data. Required: the sequence cannot
	// proceed past the board exchange without it.
	SelectParamArea func(boardValue uint32) (offset uint32, data []byte, err error)

	// Boot is the full boot image, sent last, to offset 0
	Boot []byte
}

// New creates a session over the given transport.
// The transport must behave as a blocking duplex byte channel; serial
// ports opened with a short read timeout work well, since the session
// enforces its own reply deadline.
//
// Example:
//
//	port, _ := serial.Open("/dev/ttyUSB0", &serial.Mode{BaudRate: 115200})
//	sess := downloader.New(port,
//	    downloader.WithTimeout(3*time.Second),
//	    downloader.WithLogger(slog.Default()),
//	)
func New(transport io.ReadWriter, opts ...Option) *Session {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		transport: transport,
		reader:    newReplyReader(transport, cfg.Console),
		config:    cfg,
	}
}

// ChipInfo returns the chip info negotiated by QueryChip, or nil if the
// query has not run yet.
func (s *Session) ChipInfo() *protocol.ChipInfo {
	return s.chip
}

// WaitBoot blocks until the target powers on and prints its BootROM
// banner, i.e. until a newline arrives on the serial line. The banner
// text goes to the console writer. There is no deadline: the caller
// bounds the wait through the context.
func (s *Session) WaitBoot(ctx context.Context) error {
	s.config.Logger.Debug("waiting for device power-on")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := s.reader.readByte(time.Now().Add(pollDeadline))
		if err != nil {
			if errors.Is(err, errDeadline) {
				continue
			}
			return &TransportError{Op: "wait for power-on", Err: err}
		}

		s.config.Console.Write([]byte{b})
		if b == '\n' {
			s.config.Logger.Info("device is powered on")
			return nil
		}
	}
}

// pollDeadline is how long WaitBoot blocks between context checks.
const pollDeadline = 100 * time.Millisecond

// QueryChip sends the type frame and parses the chip info reply.
// The result is cached on the session for later states.
func (s *Session) QueryChip(ctx context.Context) (*protocol.ChipInfo, error) {
	reply, err := s.exchange(ctx, "chip query", protocol.BuildTypeFrame(), protocol.TypeFrame, protocol.ChipInfoSize)
	if err != nil {
		return nil, err
	}

	info, err := protocol.ParseChipInfo(reply.Payload)
	if err != nil {
		return nil, err
	}

	s.chip = info
	s.config.Logger.Info("chip identified",
		"ca", info.CA,
		"tee", info.TEE,
		"multiform", info.Multiform,
		"boot_version", fmt.Sprintf("0x%08X", info.BootVersion),
		"system_id", fmt.Sprintf("0x%08X", info.SystemID),
	)

	return info, nil
}

// SendBoardFrame performs the board exchange and returns the 32-bit
// board value the target reports. The value feeds the parameter area
// selection; its exact meaning is target-defined.
func (s *Session) SendBoardFrame(ctx context.Context) (uint32, error) {
	reply, err := s.exchange(ctx, "board query", protocol.BuildBoardFrame(), protocol.BoardFrame, protocol.BoardReplySize)
	if err != nil {
		return 0, err
	}

	value, err := protocol.ParseBoardReply(reply.Payload)
	if err != nil {
		return 0, err
	}

	s.config.Logger.Debug("board value received", "value", fmt.Sprintf("0x%08X", value))
	return value, nil
}

// Run performs the full negotiation sequence:
//  1. Query chip capabilities; CA-enabled chips fail fast as unsupported
//  2. Transfer the head area to offset 0
//  3. Transfer the auxcode region
//  4. Board exchange, then transfer the parameter area it selects
//  5. Transfer the boot image to offset 0
//
// The order is fixed by the BootROM and any failure is terminal: the
// sequence never retries or resumes.
func (s *Session) Run(ctx context.Context, images Images) error {
	if images.SelectParamArea == nil {
		return fmt.Errorf("images: SelectParamArea is required")
	}

	info, err := s.QueryChip(ctx)
	if err != nil {
		return fmt.Errorf("query chip: %w", err)
	}
	if info.CA {
		return &UnsupportedChipError{Reason: "CA secure boot enabled"}
	}

	if err := s.SendRegion(ctx, RegionHeadArea, 0, images.HeadArea); err != nil {
		return err
	}

	if err := s.SendRegion(ctx, RegionAuxcode, images.AuxcodeOffset, images.Auxcode); err != nil {
		return err
	}

	boardValue, err := s.SendBoardFrame(ctx)
	if err != nil {
		return fmt.Errorf("board exchange: %w", err)
	}
	paramOffset, paramData, err := images.SelectParamArea(boardValue)
	if err != nil {
		return fmt.Errorf("select param area: %w", err)
	}
	if err := s.SendRegion(ctx, RegionParamArea, paramOffset, paramData); err != nil {
		return err
	}

	if err := s.SendRegion(ctx, RegionBoot, 0, images.Boot); err != nil {
		return err
	}

	s.config.Logger.Info("download sequence complete")
	return nil
}

// exchange sends a request and waits for its data-form reply.
func (s *Session) exchange(ctx context.Context, op string, frame []byte, reqType byte, payloadLen int) (*protocol.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.transport.Write(frame); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	size := payloadLen + protocol.ReplyOverhead
	deadline := time.Now().Add(s.config.ReplyTimeout)
	raw, err := s.reader.scanReply(reqType|protocol.ReplyTypeBit, size, deadline)
	if err != nil {
		return nil, s.readError(op, err)
	}

	reply, err := protocol.ParseReply(reqType, payloadLen, raw)
	if err != nil {
		return nil, err
	}
	if reply.State == protocol.StateBad {
		return nil, &RejectedError{Op: op}
	}

	return reply, nil
}

// ack sends a request and waits for its status-only reply.
func (s *Session) ack(ctx context.Context, op string, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.transport.Write(frame); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	deadline := time.Now().Add(s.config.ReplyTimeout)
	state, err := s.reader.scanStatus(deadline)
	if err != nil {
		return s.readError(op, err)
	}
	if state == protocol.StateBad {
		return &RejectedError{Op: op}
	}

	return nil
}

// readError classifies a reply-read failure. Silence within the bound is
// a timeout; anything else on the wire is a transport failure. Framing
// errors pass through unchanged.
func (s *Session) readError(op string, err error) error {
	if errors.Is(err, errDeadline) || errors.Is(err, io.EOF) {
		return &TimeoutError{Op: op, Timeout: s.config.ReplyTimeout}
	}
	var fe *protocol.FramingError
	if errors.As(err, &fe) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}
