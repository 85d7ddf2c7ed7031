// Package downloader drives the HiSilicon STB BootROM serial download
// sequence over a serial transport.
//
// # Overview
//
// A Session negotiates chip capabilities and then streams the firmware
// regions into the target, in the fixed order the BootROM expects:
//
//   - chip capability query (type frame)
//   - head area transfer, to offset 0
//   - auxcode transfer
//   - board exchange, then parameter area transfer
//   - boot image transfer, to offset 0
//
// # Basic Usage
//
//	port, err := serial.Open("/dev/ttyUSB0", &serial.Mode{BaudRate: 115200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	port.SetReadTimeout(100 * time.Millisecond)
//
//	img, err := image.Parse("fastboot.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess := downloader.New(port)
//	if err := sess.WaitBoot(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sess.Run(ctx, img.Images()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// A session is single-threaded and strictly synchronous: every frame is
// followed by a blocking wait for its reply. The transport belongs to
// the session alone for its whole lifetime. Cancellation via context is
// honored between request/reply rounds; cancelling mid-round leaves the
// target in an undefined state that only a power cycle resolves.
//
// # Error Handling
//
// All errors are terminal for the session; there are no internal
// retries. The package distinguishes:
//   - TransportError: I/O failure on the serial channel
//   - TimeoutError: no reply within the configured bound
//   - protocol.FramingError: malformed or truncated reply
//   - protocol.ChecksumError: reply CRC disagreement
//   - RejectedError: the target answered with a BAD checksum state
//   - UnsupportedChipError: CA-enabled chip, detected right after the
//     capability query and before any data is transferred
//
// Transfer failures are wrapped in TransferError with the region and the
// byte offset at which the transfer stopped.
//
// # Hardware Independence
//
// The session talks to any io.ReadWriter. Real devices typically use a
// go.bug.st/serial port; tests use in-memory mocks.
package downloader
