package ncm

import (
	"crypto/aes"
	"errors"
	"fmt"
)

var (
	coreKey = []byte{0x68, 0x7A, 0x48, 0x52, 0x41, 0x6D, 0x73, 0x6F, 0x35, 0x6B, 0x49, 0x6E, 0x62, 0x61, 0x78, 0x57}
	metaKey = []byte{0x23, 0x31, 0x34, 0x6C, 0x6A, 0x6B, 0x5F, 0x21, 0x5C, 0x5D, 0x26, 0x30, 0x55, 0x3C, 0x27, 0x28}
)

var errPadding = errors.New("invalid pkcs7 padding")

// decryptECB decrypts data block by block with AES-128 in ECB mode and strips
// PKCS#7 padding.
func decryptECB(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	size := block.BlockSize()
	if len(data) == 0 || len(data)%size != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of %d", len(data), size)
	}
	out := make([]byte, len(data))
	for off := 0; off < len(data); off += size {
		block.Decrypt(out[off:off+size], data[off:off+size])
	}
	return unpad(out, size)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errPadding
		}
	}
	return data[:len(data)-n], nil
}

func xorBytes(data []byte, mask byte) {
	for i := range data {
		data[i] ^= mask
	}
}
