package tilehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC(t *testing.T) {
	// CRC-32/BZIP2 check value
	h := New()
	h.Write([]byte("123456789"))
	assert.Equal(t, uint32(0xfc891918), h.Sum32())
	assert.Equal(t, []byte{0xfc, 0x89, 0x19, 0x18}, h.Sum(nil))

	h.Reset()
	h.Write([]byte("1234"))
	h.Write([]byte("56789"))
	assert.Equal(t, uint32(0xfc891918), h.Sum32())
}

func TestSum(t *testing.T) {
	a := make([]uint8, 64)
	b := make([]uint8, 64)
	assert.Equal(t, Sum(8, 8, a), Sum(8, 8, b))

	b[63] = 1
	assert.NotEqual(t, Sum(8, 8, a), Sum(8, 8, b))

	// Same indices, different shape
	assert.NotEqual(t, Sum(8, 8, a), Sum(16, 4, a))

	h := New()
	h.Write([]byte{8, 0, 8, 0})
	h.Write(a)
	assert.Equal(t, h.Sum32(), Sum(8, 8, a))
}
