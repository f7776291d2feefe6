// Package keystream derives the 256-byte XOR table that unlocks NCM audio
// payloads and applies it to arbitrary chunks of the stream.
//
// The table is a pure function of the derived key, so a single Table value
// can be shared by any number of goroutines decoding disjoint chunks.
package keystream

// Size is the length of the keystream table and the period of the stream.
const Size = 256

// Table is the keystream lookup table. Byte k of the payload is XORed with
// Table[k mod Size].
type Table [Size]byte

// BuildTable runs the key schedule over derivedKey and collapses the
// resulting box into a Table. An empty key yields the table of the identity
// box.
func BuildTable(derivedKey []byte) Table {
	var box [Size]byte
	for i := range box {
		box[i] = byte(i)
	}

	if len(derivedKey) > 0 {
		var last byte
		keyOffset := 0
		for i := range box {
			swap := box[i]
			c := swap + last + derivedKey[keyOffset]
			keyOffset++
			if keyOffset >= len(derivedKey) {
				keyOffset = 0
			}
			box[i] = box[c]
			box[c] = swap
			last = c
		}
	}

	var table Table
	for i := range table {
		j := (i + 1) & 0xff
		table[i] = box[(int(box[j])+int(box[(int(box[j])+j)&0xff]))&0xff]
	}
	return table
}

// Combine XORs buf in place with the keystream starting at stream position
// offset and returns buf. Applying Combine twice with the same offset restores
// the original bytes.
func Combine(buf []byte, table Table, offset int64) []byte {
	start := int(offset & 0xff)
	for k := range buf {
		buf[k] ^= table[(start+k)&0xff]
	}
	return buf
}
