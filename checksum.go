package ftclone

import "math/bits"

const checksumSeed = 0xAAAA

func rotl16(x uint16) uint16 { return bits.RotateLeft16(x, 1) }
func rotr16(x uint16) uint16 { return bits.RotateLeft16(x, -1) }

func fold(words []uint16) uint16 {
	var check uint16 = checksumSeed
	for _, w := range words {
		check = rotl16(check ^ w)
	}
	return check
}

// Checksum computes the FT232R EEPROM checksum over words 0x00-0x3E.
// The image is valid when the result equals the word at 0x3F.
func Checksum(img *Image) uint16 {
	return fold(img[:AddrChecksum])
}

// Forge returns the value for the user word (0x3E) that makes img valid
// against its current stored checksum, leaving every other word as is.
//
// The last fold step is check = rotl(c ^ w), so solving for w gives
// w = c ^ rotr(check).
func Forge(img *Image) uint16 {
	return fold(img[:AddrUser]) ^ rotr16(img[AddrChecksum])
}
