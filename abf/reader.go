package abf

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const blockSize = 512

// reader is a bounds-checked little-endian view over the file bytes. The first
// out-of-range access sets err; later reads return zero values.
type reader struct {
	data []byte
	err  error
}

func (r *reader) slice(off int64, n int) []byte {
	if r.err != nil {
		return nil
	}
	if off < 0 || n < 0 || off+int64(n) > int64(len(r.data)) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, file has %d", ErrTruncated, n, off, len(r.data))
		return nil
	}
	return r.data[off : off+int64(n)]
}

func (r *reader) u32(off int64) uint32 {
	b := r.slice(off, 4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) i32(off int64) int32 {
	return int32(r.u32(off))
}

func (r *reader) i64(off int64) int64 {
	b := r.slice(off, 8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func (r *reader) i16(off int64) int16 {
	b := r.slice(off, 2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *reader) f32(off int64) float32 {
	return math.Float32frombits(r.u32(off))
}

// str reads a fixed-width, space or NUL padded ASCII field.
func (r *reader) str(off int64, n int) string {
	b := r.slice(off, n)
	if b == nil {
		return ""
	}
	return strings.TrimRight(string(b), " \x00")
}

// has reports whether n bytes at off are inside the file, without setting err.
func (r *reader) has(off int64, n int) bool {
	return off >= 0 && off+int64(n) <= int64(len(r.data))
}
