// Command histb-flash boots a HiSilicon/Goke set-top box over its
// BootROM serial download protocol. Point it at a fastboot image and
// the board's serial console, power-cycle the box, and the tool walks
// the ROM through head area, auxcode, board parameters and the boot
// image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.bug.st/serial"

	"github.com/histb-tools/go-histb/downloader"
	"github.com/histb-tools/go-histb/image"
)

func main() {
	portName := flag.String("p", "", "serial port (auto-detected when exactly one is present)")
	baud := flag.Int("b", 115200, "baud rate")
	timeout := flag.Duration("t", 3*time.Second, "reply timeout")
	debug := flag.Bool("d", false, "log protocol exchanges")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <fastboot image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*portName, *baud, *timeout, *debug, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "histb-flash:", err)
		os.Exit(1)
	}
}

func run(portName string, baud int, timeout time.Duration, debug bool, imagePath string) error {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	img, err := image.Parse(imagePath)
	if err != nil {
		return err
	}
	fmt.Println(img)

	if portName == "" {
		portName, err = detectPort()
		if err != nil {
			return err
		}
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", portName, err)
	}
	defer port.Close()

	// Short read timeout so replies interleaved with console output
	// come back in small slices instead of blocking forever.
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		return fmt.Errorf("set read timeout: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progress := newProgressPrinter()
	sess := downloader.New(port,
		downloader.WithTimeout(timeout),
		downloader.WithLogger(logger),
		downloader.WithConsoleWriter(os.Stdout),
		downloader.WithProgressCallback(progress.update),
	)

	fmt.Printf("waiting for BootROM on %s, power-cycle the box now\n", portName)
	if err := sess.WaitBoot(ctx); err != nil {
		return err
	}

	if err := sess.Run(ctx, img.Images()); err != nil {
		progress.close()
		return err
	}
	progress.close()

	fmt.Println("download complete, board is booting")
	return nil
}

func detectPort() (string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	switch len(ports) {
	case 0:
		return "", fmt.Errorf("no serial ports found, pass one with -p")
	case 1:
		return ports[0], nil
	default:
		return "", fmt.Errorf("multiple serial ports found (%v), pick one with -p", ports)
	}
}

// progressPrinter renders one progress bar per downloaded region.
type progressPrinter struct {
	region downloader.Region
	bar    *progressbar.ProgressBar
}

func newProgressPrinter() *progressPrinter {
	return &progressPrinter{region: -1}
}

func (p *progressPrinter) update(pr downloader.Progress) {
	if p.bar == nil || pr.Region != p.region {
		p.close()
		p.region = pr.Region
		p.bar = progressbar.DefaultBytes(int64(pr.TotalBytes), pr.Region.String())
	}
	p.bar.Set64(int64(pr.BytesSent))
}

func (p *progressPrinter) close() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
