package protocol

import "fmt"

// ChipInfo contains the chip identity and capabilities negotiated by the
// type frame exchange. It is valid for the lifetime of the session.
type ChipInfo struct {
	// CA reports whether the chip has CA secure boot enabled.
	// CA-enabled chips follow a different parameter area flow that this
	// library does not implement.
	CA bool

	// TEE reports whether the chip runs a trusted execution environment
	TEE bool

	// Multiform reports the multiform capability flag
	Multiform bool

	// BootVersion is the BootROM version
	BootVersion uint32

	// SystemID identifies the SoC
	SystemID uint32
}

func (c *ChipInfo) String() string {
	return fmt.Sprintf("chip ca=%t tee=%t multiform=%t boot_version=0x%08X system_id=0x%08X",
		c.CA, c.TEE, c.Multiform, c.BootVersion, c.SystemID)
}
