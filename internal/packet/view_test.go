package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowPreservesContent(t *testing.T) {
	v := NewView([]byte{1, 2, 3, 4})
	v.Grow(4)
	copy(v.Bytes()[4:], []byte{5, 6, 7, 8})

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, v.Bytes())
}

func TestGrowReallocates(t *testing.T) {
	small := make([]byte, 2, 2)
	small[0], small[1] = 0xaa, 0xbb
	v := NewView(small)
	v.Grow(10)

	require.Equal(t, 12, v.Len())
	assert.Equal(t, byte(0xaa), v.Bytes()[0])
	assert.Equal(t, byte(0xbb), v.Bytes()[1])
}

func TestShrinkDoesNotFreeMemory(t *testing.T) {
	v := NewView([]byte{1, 2, 3, 4, 5})
	full := v.Bytes()
	v.Shrink(2)

	require.Equal(t, 3, v.Len())
	// The dropped bytes are still reachable through the original backing
	// array; Shrink only adjusts the logical length.
	assert.Same(t, &full[0], &v.Bytes()[0])
}

func TestAppend(t *testing.T) {
	v := NewView([]byte{1, 2, 3})
	v.Append([]byte{4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, v.Bytes())
}

func TestReadRegion(t *testing.T) {
	v := NewView([]byte{1, 2, 3, 4, 5})
	dst := make([]byte, 2)
	n := v.ReadRegion(1, 2, dst)
	require.Equal(t, 2, n)
	assert.Equal(t, []byte{2, 3}, dst)
}

func TestRTPFieldAccessors(t *testing.T) {
	buf := make([]byte, 12+8)
	buf[0] = 2 << 6 // version 2, no padding/extension, 0 CSRCs
	buf[1] = 100
	networkOrder.PutUint16(buf[2:], 0x1234)
	networkOrder.PutUint32(buf[8:], 0xcafebabe)

	v := NewView(buf)
	assert.EqualValues(t, 2, v.Version())
	assert.EqualValues(t, 0x1234, v.SequenceNumber())
	assert.EqualValues(t, 0xcafebabe, v.SSRC())
	assert.Equal(t, 12, v.HeaderLength())
	assert.Equal(t, 8, v.PayloadLength())
}

func TestRTCPFieldAccessors(t *testing.T) {
	buf := make([]byte, 8+4)
	buf[1] = 200 // RTCP SR
	networkOrder.PutUint32(buf[4:8], 0xdeadbeef)

	v := NewView(buf)
	assert.EqualValues(t, 0xdeadbeef, v.RTCPSSRC())
	assert.Equal(t, 8, v.RTCPHeaderLength())
}

func TestSRTCPIndex(t *testing.T) {
	tagLen := 10
	buf := make([]byte, 8+4+tagLen)
	field := uint32(42) | (1 << 31)
	networkOrder.PutUint32(buf[8:12], field)

	v := NewView(buf)
	index, encrypted := v.SRTCPIndex(tagLen)
	assert.EqualValues(t, 42, index)
	assert.True(t, encrypted)
}
