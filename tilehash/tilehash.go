/*
Package tilehash computes the content hash of an indexed tile.

The hash is a CRC-32 using the normal polynomial computed MSB first, fed with
the tile dimensions followed by one byte per palette index. Equal hashes do not
guarantee equal tiles; callers compare the indices on a match.
*/
package tilehash

import (
	"hash"
	crc "hash/crc32"
)

const polynomial = 0x04c11db7

func makeTable(poly uint32) *crc.Table {
	t := new(crc.Table)
	for i := range t {
		v := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if v&0x80000000 != 0 {
				v = v<<1 ^ poly
			} else {
				v <<= 1
			}
		}
		t[i] = v
	}
	return t
}

var table = makeTable(polynomial)

func update(v uint32, p []byte) uint32 {
	for _, b := range p {
		v = v<<8 ^ table[byte(v>>24)^b]
	}
	return v
}

type digest struct {
	v uint32
}

// New creates a new hash.Hash32 computing the tile hash. Its Sum method
// will lay the value out in big-endian byte order.
func New() hash.Hash32 {
	d := new(digest)
	d.Reset()
	return d
}

func (d *digest) Size() int { return crc.Size }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.v = 0xffffffff }

func (d *digest) Write(p []byte) (int, error) {
	d.v = update(d.v, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 { return ^d.v }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

// Sum returns the hash of a width x height tile of palette indices.
func Sum(width, height int, indices []uint8) uint32 {
	h := New()
	h.Write([]byte{byte(width), byte(width >> 8), byte(height), byte(height >> 8)})
	h.Write(indices)
	return h.Sum32()
}
