package downloader

import (
	"context"
	"fmt"
	"time"

	"github.com/histb-tools/go-histb/protocol"
)

// SendRegion streams one region of the source image to the target at the
// given offset: a head frame announcing the padded length, the data split
// into BlockSize blocks (the final block zero-padded), and a tail frame.
// Every frame must be acknowledged OK before the next is sent; a BAD
// state aborts the transfer immediately.
//
// A zero-length region still emits the head and tail frames.
// Sequence numbering restarts at 0 for every call.
func (s *Session) SendRegion(ctx context.Context, region Region, offset uint32, data []byte) error {
	start := time.Now()
	seqs := protocol.NewSequence()

	blocks := (len(data) + protocol.BlockSize - 1) / protocol.BlockSize
	padded := blocks * protocol.BlockSize

	s.config.Logger.Debug("sending region",
		"region", region.String(),
		"offset", fmt.Sprintf("0x%X", offset),
		"length", len(data),
		"blocks", blocks,
	)

	seq, _ := seqs.Next()
	head := protocol.BuildHeadFrame(seq, uint32(padded), offset)
	if err := s.ack(ctx, "head frame", head); err != nil {
		return &TransferError{Region: region, Offset: 0, Err: err}
	}

	sent := 0
	for sent < len(data) {
		block := data[sent:min(sent+protocol.BlockSize, len(data))]
		if len(block) < protocol.BlockSize {
			pad := make([]byte, protocol.BlockSize)
			copy(pad, block)
			block = pad
		}

		seq, _ = seqs.Next()
		frame, err := protocol.BuildDataFrame(seq, block)
		if err != nil {
			return &TransferError{Region: region, Offset: uint32(sent), Err: err}
		}
		if err := s.ack(ctx, fmt.Sprintf("data frame %d", seq), frame); err != nil {
			return &TransferError{Region: region, Offset: uint32(sent), Err: err}
		}

		sent = min(sent+protocol.BlockSize, len(data))
		s.reportProgress(region, sent, len(data), start)
	}

	seq, _ = seqs.Next()
	if err := s.ack(ctx, "tail frame", protocol.BuildTailFrame(seq)); err != nil {
		return &TransferError{Region: region, Offset: uint32(len(data)), Err: err}
	}

	s.reportProgress(region, len(data), len(data), start)
	s.config.Logger.Debug("region sent", "region", region.String(), "elapsed", time.Since(start).String())
	return nil
}

func (s *Session) reportProgress(region Region, sent, total int, start time.Time) {
	if s.config.ProgressCallback == nil {
		return
	}

	percentage := 100.0
	if total > 0 {
		percentage = float64(sent) / float64(total) * 100
	}
	s.config.ProgressCallback(Progress{
		Region:     region,
		BytesSent:  sent,
		TotalBytes: total,
		Percentage: percentage,
		Elapsed:    time.Since(start),
	})
}
