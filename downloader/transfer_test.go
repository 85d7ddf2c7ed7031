package downloader

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histb-tools/go-histb/protocol"
)

func TestSendRegionFrameCounts(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		dataFrames int
	}{
		{"zero length", 0, 0},
		{"single byte", 1, 1},
		{"short region", 200, 1},
		{"exactly one block", 1024, 1},
		{"one block plus one byte", 1025, 2},
		{"exact multiple", 2048, 2},
		{"three blocks", 2500, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newMockTarget()
			for i := 0; i < tt.dataFrames+2; i++ {
				target.queueOK()
			}

			sess := New(target)
			data := bytes.Repeat([]byte{0xA5}, tt.length)
			require.NoError(t, sess.SendRegion(context.Background(), RegionAuxcode, 0, data))

			frames := decodeWrites(t, target.writes)
			require.Len(t, frames, tt.dataFrames+2)

			assert.Equal(t, byte(protocol.HeadFrame), frames[0].frameType)
			assert.Equal(t, byte(protocol.TailFrame), frames[len(frames)-1].frameType)
			for i := 1; i <= tt.dataFrames; i++ {
				assert.Equalf(t, byte(protocol.DataFrame), frames[i].frameType, "frame %d", i)
				assert.Lenf(t, frames[i].payload, protocol.BlockSize, "frame %d", i)
				assert.Equalf(t, uint16(i), frames[i].seq, "frame %d", i)
			}

			// The head frame announces the padded length.
			wantPadded := uint32(tt.dataFrames * protocol.BlockSize)
			assert.Equal(t, wantPadded, binary.BigEndian.Uint32(frames[0].payload[1:5]))
		})
	}
}

func TestSendRegionPadsFinalBlock(t *testing.T) {
	target := newMockTarget()
	target.queueOK()
	target.queueOK()
	target.queueOK()
	target.queueOK()

	sess := New(target)
	data := bytes.Repeat([]byte{0x7E}, 1500)
	require.NoError(t, sess.SendRegion(context.Background(), RegionBoot, 0, data))

	frames := decodeWrites(t, target.writes)
	require.Len(t, frames, 4)

	first := frames[1].payload
	assert.Equal(t, bytes.Repeat([]byte{0x7E}, protocol.BlockSize), first)

	final := frames[2].payload
	require.Len(t, final, protocol.BlockSize)
	assert.Equal(t, bytes.Repeat([]byte{0x7E}, 1500-protocol.BlockSize), final[:1500-protocol.BlockSize])
	assert.Equal(t, make([]byte, 2*protocol.BlockSize-1500), final[1500-protocol.BlockSize:])
}

func TestSendRegionRejectedStopsTransfer(t *testing.T) {
	// A BAD state on the second of three data frames must abort the
	// transfer: no third data frame, no tail frame.
	target := newMockTarget()
	target.queueOK()  // head
	target.queueOK()  // data 1
	target.queueBad() // data 2

	sess := New(target)
	data := bytes.Repeat([]byte{0x01}, 2500)
	err := sess.SendRegion(context.Background(), RegionParamArea, 0x480, data)

	var te *TransferError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, RegionParamArea, te.Region)
	assert.Equal(t, uint32(protocol.BlockSize), te.Offset)

	var re *RejectedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "data frame 2", re.Op)

	require.Len(t, target.writes, 3)
}

func TestSendRegionHeadRejected(t *testing.T) {
	target := newMockTarget()
	target.queueBad()

	sess := New(target)
	err := sess.SendRegion(context.Background(), RegionHeadArea, 0, []byte{0x01})

	var re *RejectedError
	require.ErrorAs(t, err, &re)
	require.Len(t, target.writes, 1)
}

func TestSendRegionTimeout(t *testing.T) {
	target := newMockTarget()
	target.queueOK() // head only; the first data frame gets no reply

	sess := New(target, WithTimeout(50*time.Millisecond))
	err := sess.SendRegion(context.Background(), RegionBoot, 0, make([]byte, 100))

	var te *TimeoutError
	require.ErrorAs(t, err, &te)

	var xe *TransferError
	require.ErrorAs(t, err, &xe)
	assert.Equal(t, RegionBoot, xe.Region)
}

func TestSendRegionCancelledBetweenRounds(t *testing.T) {
	target := newMockTarget()
	target.queueOK()

	ctx, cancel := context.WithCancel(context.Background())
	sess := New(target, WithProgressCallback(func(Progress) { cancel() }))

	// The callback fires after the first data frame is acknowledged, so
	// the tail round observes the cancelled context.
	target.queueOK()
	err := sess.SendRegion(ctx, RegionAuxcode, 0, make([]byte, 10))
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, target.writes, 2) // head + data, no tail
}

func TestSendRegionProgress(t *testing.T) {
	target := newMockTarget()
	for i := 0; i < 4; i++ {
		target.queueOK()
	}

	var reports []Progress
	sess := New(target, WithProgressCallback(func(p Progress) {
		reports = append(reports, p)
	}))

	require.NoError(t, sess.SendRegion(context.Background(), RegionAuxcode, 0, make([]byte, 2048)))

	require.Len(t, reports, 3) // two data frames + tail
	assert.Equal(t, 1024, reports[0].BytesSent)
	assert.Equal(t, 2048, reports[0].TotalBytes)
	assert.InDelta(t, 50.0, reports[0].Percentage, 0.01)
	assert.Equal(t, 2048, reports[1].BytesSent)
	assert.InDelta(t, 100.0, reports[2].Percentage, 0.01)
	for _, p := range reports {
		assert.Equal(t, RegionAuxcode, p.Region)
	}
}
