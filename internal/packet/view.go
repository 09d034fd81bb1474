// Package packet implements a zero-copy mutable view over a byte buffer,
// used by the SRTP/SRTCP crypto contexts to read header fields and to grow,
// shrink, and append onto a packet in place without an intermediate codec
// object. See internal/packet/reader.go and writer.go in the teacher corpus
// for the offset-tracked accessor idiom this generalizes.
package packet

import "encoding/binary"

// View is a mutable window over an owning byte buffer. The logical content
// is buf[:len(buf)]; cap(buf) may exceed len(buf), giving Grow and Append
// room to extend in place before a reallocation is needed.
type View struct {
	buf []byte
}

// NewView wraps buf as the initial logical content of the view.
func NewView(buf []byte) *View {
	return &View{buf: buf}
}

// Bytes returns the current logical content. The returned slice aliases the
// view's backing array and is invalidated by a subsequent Grow/Append that
// reallocates.
func (v *View) Bytes() []byte {
	return v.buf
}

// Len returns the number of logical bytes currently held.
func (v *View) Len() int {
	return len(v.buf)
}

// ReadRegion copies length bytes starting at offset into dst, returning the
// number of bytes copied. The caller must ensure dst has room.
func (v *View) ReadRegion(offset, length int, dst []byte) int {
	return copy(dst, v.buf[offset:offset+length])
}

// Shrink reduces the logical length by n bytes. No memory is freed; the
// dropped bytes remain in the backing array, where a subsequent in-place
// Grow exposes them again and an Append overwrites them.
func (v *View) Shrink(n int) {
	v.buf = v.buf[:len(v.buf)-n]
}

// Grow extends the logical length by n bytes, preserving existing bytes in
// their current positions. If the backing array lacks spare capacity, a new,
// larger array is allocated and the old content copied forward.
func (v *View) Grow(n int) {
	need := len(v.buf) + n
	if cap(v.buf) >= need {
		v.buf = v.buf[:need]
		return
	}
	grown := make([]byte, need, growCapacity(need))
	copy(grown, v.buf)
	v.buf = grown
}

// Append grows the view by len(b) bytes and copies b into the new region.
func (v *View) Append(b []byte) {
	old := len(v.buf)
	v.Grow(len(b))
	copy(v.buf[old:], b)
}

// growCapacity picks a backing-array size with room to spare, so that a
// sequence of small Appends (e.g. index field, then auth tag) doesn't
// reallocate on every call.
func growCapacity(need int) int {
	const slack = 32
	return need + slack
}

var networkOrder = binary.BigEndian
