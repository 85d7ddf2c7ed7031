package protocol

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			// standard CRC-16/XMODEM check value
			name: "check string",
			data: []byte("123456789"),
			want: 0x31C3,
		},
		{
			name: "empty input",
			data: nil,
			want: 0x0000,
		},
		{
			name: "single zero byte",
			data: []byte{0x00},
			want: 0x0000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(%v) = 0x%04X, want 0x%04X", tt.data, got, tt.want)
			}
		})
	}
}

func TestChecksumSelfVerifying(t *testing.T) {
	// Appending the big-endian checksum makes the CRC of the whole
	// message zero; the BootROM relies on this to validate frames.
	data := []byte{0xBD, 0x00, 0x00, 0xFF, 0xFF, 0x01, 0x02, 0x03}
	crc := Checksum(data)
	whole := append(append([]byte{}, data...), byte(crc>>8), byte(crc))

	if got := Checksum(whole); got != 0 {
		t.Errorf("Checksum over frame including its checksum = 0x%04X, want 0", got)
	}
}
