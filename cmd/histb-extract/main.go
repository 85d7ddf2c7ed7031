// Command histb-extract unpacks a HiSilicon/Goke fastboot image into
// its downloadable parts: the auxcode blob and the per-board bootreg
// register scripts.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/histb-tools/go-histb/image"
	"github.com/histb-tools/go-histb/regbin"
)

func main() {
	printInfo := flag.Bool("p", false, "print image layout and exit")
	outDir := flag.String("d", ".", "output directory")
	exact := flag.Bool("e", false, "strip trailing zero bytes from extracted files")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <fastboot image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *outDir, *printInfo, *exact); err != nil {
		fmt.Fprintln(os.Stderr, "histb-extract:", err)
		os.Exit(1)
	}
}

func run(imagePath, outDir string, printInfo, exact bool) error {
	img, err := image.Parse(imagePath)
	if err != nil {
		return err
	}

	if printInfo {
		fmt.Println(img)
		if rb, err := regbin.Parse(img.DefaultBootreg); err == nil {
			fmt.Printf("default bootreg: version %q, built %q, board %q, %d regions\n",
				rb.Version, rb.BuildTime, rb.BoardType, len(rb.Regions))
		}
		return nil
	}

	if exact {
		img.TruncateToMinimal()
	}
	if err := img.WriteToDirectory(outDir); err != nil {
		return err
	}

	fmt.Printf("extracted auxcode and %d bootregs to %s\n", len(img.Bootregs), outDir)
	return nil
}
