package bx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLittleEndianReadWrite verifies that PutU32/PutI32 and U32/I32
// round-trip values using little-endian encoding.
func TestLittleEndianReadWrite(t *testing.T) {
	// ---- U32 ----
	{
		b := make([]byte, 4)
		var v uint32 = 0x01020304

		PutU32(b, v)
		// LE: 04 03 02 01
		assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b)
		assert.Equal(t, v, U32(b))
	}

	// ---- I32 (negative) ----
	{
		b := make([]byte, 4)
		PutI32(b, -2)
		assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, b)
		assert.Equal(t, int32(-2), I32(b))
	}
}

func TestLittleEndianAt(t *testing.T) {
	buf := make([]byte, 12)

	PutU32At(buf, 0, 0x01020304)
	PutI32At(buf, 4, -7)

	assert.Equal(t, uint32(0x01020304), U32At(buf, 0))
	assert.Equal(t, int32(-7), I32At(buf, 4))
	// untouched tail
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[8:])
}

func TestBitmap(t *testing.T) {
	assert.Equal(t, 0, BitmapLen(0))
	assert.Equal(t, 1, BitmapLen(1))
	assert.Equal(t, 1, BitmapLen(8))
	assert.Equal(t, 2, BitmapLen(9))

	b := make([]byte, 2)
	SetBit(b, 0, true)
	SetBit(b, 9, true)
	assert.Equal(t, []byte{0x01, 0x02}, b)
	assert.True(t, BitSet(b, 0))
	assert.False(t, BitSet(b, 1))
	assert.True(t, BitSet(b, 9))

	SetBit(b, 0, false)
	assert.Equal(t, []byte{0x00, 0x02}, b)
}
