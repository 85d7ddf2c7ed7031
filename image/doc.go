// Package image parses version-1 fastboot (u-boot) images for HiSilicon
// set-top-box SoCs and extracts the regions the BootROM serial
// downloader transfers.
//
// # Image Layout
//
// A fastboot image carries its own region table (all fields
// little-endian):
//
//	0x0214  auxcode address (4)
//	0x0218  auxcode size (4)
//	0x0480  default bootreg (fixed address)
//	0x2FE4  bootreg list address (4)
//	0x2FE8  bootreg entry size (4)
//
// The head area is everything before the auxcode region; the boot image
// is the whole file. The bootreg list holds at most 8 entries and ends
// at the first entry whose leading byte is zero.
//
// # Usage
//
//	img, err := image.Parse("fastboot.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess := downloader.New(port)
//	err = sess.Run(ctx, img.Images())
//
// The extracted binaries can also be dumped for l-loader use:
//
//	img.TruncateToMinimal()
//	err = img.WriteToDirectory("out")
package image
