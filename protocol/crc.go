// Package protocol implements the integrity checks and the framed message
// codec shared by the serial transports.
package protocol

import "hash/crc32"

// CRC8 computes CRC-8/CCITT (polynomial 0x07, initial value 0, no reflection)
// over data. The native protocol appends this as the trailing byte of every
// 8-byte state frame.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the Castagnoli CRC over data as the firmware does: initial
// register 0xFFFFFFFF and no final complement. hash/crc32 applies the final
// complement, so it is undone here.
func CRC32C(data []byte) uint32 {
	return ^crc32.Checksum(data, castagnoli)
}
