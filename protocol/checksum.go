package protocol

import "github.com/sigurn/crc16"

// crcTable is the CRC-16/XMODEM table (polynomial 0x1021, initial value
// 0x0000, no reflection, no final XOR). The variant is pinned against
// known-good captures of the BootROM exchange and must not be changed.
var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Checksum computes the 16-bit frame checksum over data.
//
// For requests it covers TYPE through the end of the payload; for
// data-form replies it covers TYPE and the payload.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
