package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/histb-tools/go-histb/downloader"
)

// Fastboot image layout constants (version 1). All header fields are
// stored little-endian inside the image.
const (
	// MinImageSize rejects files too small to be a fastboot image (56K)
	MinImageSize = 0xF000

	// MaxImageSize rejects files too large to be a fastboot image (2M)
	MaxImageSize = 0x200000

	// auxcodeAddrOffset holds the auxcode region address
	auxcodeAddrOffset = 0x214

	// auxcodeSizeOffset holds the auxcode region size
	auxcodeSizeOffset = 0x218

	// bootregsAddrOffset holds the address of the bootreg list
	bootregsAddrOffset = 0x2FE4

	// bootregSizeOffset holds the size of one bootreg entry
	bootregSizeOffset = 0x2FE8

	// DefaultBootregAddr is the fixed address of the default bootreg
	DefaultBootregAddr = 0x480

	// MaxBootregs caps the bootreg list length
	MaxBootregs = 8
)

// FastbootImage is a parsed version-1 fastboot (u-boot) image with its
// downloadable regions located and extracted.
type FastbootImage struct {
	// AuxcodeAddr is the auxcode region address within the image,
	// doubling as the target offset for the auxcode transfer
	AuxcodeAddr uint32

	// AuxcodeSize is the auxcode region size in bytes
	AuxcodeSize uint32

	// BootregsAddr is the image address of the bootreg list, doubling
	// as the target offset for the param area transfer
	BootregsAddr uint32

	// BootregSize is the size of one bootreg entry in bytes
	BootregSize uint32

	// HeadArea is everything before the auxcode region
	HeadArea []byte

	// Auxcode is the auxiliary code region
	Auxcode []byte

	// DefaultBootreg is the default bootreg at DefaultBootregAddr
	DefaultBootreg []byte

	// Bootregs is the bootreg list, at most MaxBootregs entries,
	// terminated by an entry whose first byte is zero
	Bootregs [][]byte

	// BootregMismatch reports that the first list entry differs from
	// the default bootreg, which usually means a corrupted image
	BootregMismatch bool

	raw []byte
}

// Parse parses a fastboot image from the given file path.
func Parse(path string) (*FastbootImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses a fastboot image from any io.Reader.
func ParseReader(r io.Reader) (*FastbootImage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return ParseBytes(raw)
}

// ParseBytes parses a fastboot image held in memory. The returned
// regions alias the input slice.
func ParseBytes(raw []byte) (*FastbootImage, error) {
	if len(raw) < MinImageSize || len(raw) > MaxImageSize {
		return nil, fmt.Errorf("image size 0x%X out of range [0x%X, 0x%X]", len(raw), MinImageSize, MaxImageSize)
	}

	img := &FastbootImage{
		AuxcodeAddr:  binary.LittleEndian.Uint32(raw[auxcodeAddrOffset:]),
		AuxcodeSize:  binary.LittleEndian.Uint32(raw[auxcodeSizeOffset:]),
		BootregsAddr: binary.LittleEndian.Uint32(raw[bootregsAddrOffset:]),
		BootregSize:  binary.LittleEndian.Uint32(raw[bootregSizeOffset:]),
		raw:          raw,
	}

	auxEnd := uint64(img.AuxcodeAddr) + uint64(img.AuxcodeSize)
	if img.AuxcodeAddr == 0 || auxEnd > uint64(len(raw)) {
		return nil, fmt.Errorf("auxcode region [0x%X, 0x%X) outside image", img.AuxcodeAddr, auxEnd)
	}
	bootregEnd := uint64(DefaultBootregAddr) + uint64(img.BootregSize)
	if bootregEnd > uint64(len(raw)) {
		return nil, fmt.Errorf("default bootreg region [0x%X, 0x%X) outside image", DefaultBootregAddr, bootregEnd)
	}

	img.HeadArea = raw[:img.AuxcodeAddr]
	img.Auxcode = raw[img.AuxcodeAddr:auxEnd]
	img.DefaultBootreg = raw[DefaultBootregAddr:bootregEnd]

	img.extractBootregs()
	return img, nil
}

// extractBootregs walks the bootreg list. An entry whose first byte is
// zero ends the list.
func (img *FastbootImage) extractBootregs() {
	if img.BootregSize == 0 {
		return
	}

	for i := 0; i < MaxBootregs; i++ {
		begin := uint64(img.BootregsAddr) + uint64(i)*uint64(img.BootregSize)
		end := begin + uint64(img.BootregSize)
		if end > uint64(len(img.raw)) {
			break
		}

		entry := img.raw[begin:end]
		if entry[0] == 0 {
			break
		}
		img.Bootregs = append(img.Bootregs, entry)
	}

	if len(img.Bootregs) > 0 && !bytes.Equal(img.Bootregs[0], img.DefaultBootreg) {
		img.BootregMismatch = true
	}
}

// Boot returns the full boot image, transferred last at offset 0.
func (img *FastbootImage) Boot() []byte {
	return img.raw
}

// SelectParamArea maps the board frame reply value to the parameter area
// transfer. The current image layout ignores the value and always sends
// the default bootreg to the bootreg list address, matching the
// reference tooling.
func (img *FastbootImage) SelectParamArea(boardValue uint32) (uint32, []byte, error) {
	return img.BootregsAddr, img.DefaultBootreg, nil
}

// Images bundles the extracted regions for downloader.Session.Run.
func (img *FastbootImage) Images() downloader.Images {
	return downloader.Images{
		HeadArea:        img.HeadArea,
		Auxcode:         img.Auxcode,
		AuxcodeOffset:   img.AuxcodeAddr,
		SelectParamArea: img.SelectParamArea,
		Boot:            img.Boot(),
	}
}

// TruncateToMinimal strips trailing zero bytes from the extracted
// auxcode and bootreg copies to minimize written files. It does not
// affect the regions used for flashing.
func (img *FastbootImage) TruncateToMinimal() {
	img.Auxcode = bytes.TrimRight(img.Auxcode, "\x00")
	img.DefaultBootreg = bytes.TrimRight(img.DefaultBootreg, "\x00")
	for i, reg := range img.Bootregs {
		img.Bootregs[i] = bytes.TrimRight(reg, "\x00")
	}
}

// WriteToDirectory writes the extracted binaries into path, creating it
// if needed: AUXCODE.img plus BOOT_n.reg for each bootreg (or the
// default bootreg as BOOT_0.reg when the list is empty).
func (img *FastbootImage) WriteToDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(path, "AUXCODE.img"), img.Auxcode, 0o644); err != nil {
		return err
	}

	regs := img.Bootregs
	if len(regs) == 0 {
		regs = [][]byte{img.DefaultBootreg}
	}
	for i, reg := range regs {
		name := filepath.Join(path, fmt.Sprintf("BOOT_%d.reg", i))
		if err := os.WriteFile(name, reg, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func (img *FastbootImage) String() string {
	return fmt.Sprintf(
		"auxcode address: 0x%08X\nauxcode size: 0x%08X\nbootreg size: 0x%08X\ndefault bootreg address: 0x%08X\nbootregs address: 0x%08X\nbootregs count: %d",
		img.AuxcodeAddr, img.AuxcodeSize, img.BootregSize, uint32(DefaultBootregAddr), img.BootregsAddr, len(img.Bootregs))
}
