package tileanim

import (
	"errors"
	"fmt"
	"unsafe"
)

// Supported texture sides. Tile textures are always square and the shift
// arithmetic relies on the pixel count being a power of two.
const (
	SideSmall = 64
	SideLarge = 128

	// LenSmall and LenLarge are the pixel counts of the supported sides.
	LenSmall = SideSmall * SideSmall
	LenLarge = SideLarge * SideLarge
)

// Errors returned by the transform.
var (
	// ErrUnsupportedSize is returned when a pixel buffer is not 64x64 or 128x128.
	ErrUnsupportedSize = errors.New("tileanim: unsupported texture size")

	// ErrDstTooSmall is returned when the destination is shorter than the source.
	ErrDstTooSmall = errors.New("tileanim: destination buffer too small")

	// ErrAliased is returned when source and destination share memory.
	ErrAliased = errors.New("tileanim: source and destination overlap")
)

// SideFor returns the texture side for a pixel count, or 0 when n is not
// a supported size.
func SideFor(n int) int {
	switch n {
	case LenSmall:
		return SideSmall
	case LenLarge:
		return SideLarge
	default:
		return 0
	}
}

// checkLen validates a pixel count and returns the row size.
func checkLen(n int) (int, error) {
	side := SideFor(n)
	if side == 0 {
		return 0, fmt.Errorf("%w: %d pixels (want %d or %d)", ErrUnsupportedSize, n, LenSmall, LenLarge)
	}
	return side, nil
}

// floorMod returns a mod m in [0, m) for m > 0, including negative a.
func floorMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// rowShift returns floorMod(sign*tick*speed, rowSize) without overflowing
// for any tick or speed. Both vertical and horizontal offsets are derived
// from it: vertical moves that many whole rows, horizontal that many columns.
func rowShift(mode Mode, speed, tick, rowSize int) int {
	s := mode.sign()
	if s == 0 {
		return 0
	}
	r := floorMod(tick, rowSize) * floorMod(speed, rowSize) % rowSize
	if s < 0 {
		r = floorMod(-r, rowSize)
	}
	return r
}

// ShiftOffset returns the normalized read offset for a buffer of n pixels:
// the flat offset in [0, n) for vertical modes (always a multiple of the
// row size) and the column offset in [0, side) for horizontal modes.
// It returns 0 for ModeNone and for unsupported n.
func ShiftOffset(mode Mode, speed, tick, n int) int {
	side := SideFor(n)
	if side == 0 {
		return 0
	}
	r := rowShift(mode, speed, tick, side)
	if mode.IsVertical() {
		return r * side
	}
	return r
}

// Period returns the number of ticks after which the animation of a
// texture with the given side repeats. It is side/gcd(side, speed) for
// both axes and 1 when nothing moves.
func Period(mode Mode, speed, side int) int {
	if side <= 0 || mode.sign() == 0 {
		return 1
	}
	return side / gcd(side, floorMod(speed, side))
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Shift writes the arrangement of src for (mode, speed, tick) into dst.
//
// For vertical modes dst[i] = src[(shift+i) mod N] where shift is
// tick*side*speed, negated for ModeScrollUp. For horizontal modes each row
// block b is rotated on its own: dst[b+j] = src[b + (shift+j) mod side] with
// shift = tick*speed, negated for ModeScrollLeft. ModeNone copies src.
//
// src must hold 4096 or 16384 pixels and dst at least as many. The two
// slices must not overlap. Shift does not allocate.
func Shift(dst, src []uint32, mode Mode, speed, tick int) error {
	side, err := checkLen(len(src))
	if err != nil {
		return err
	}
	if len(dst) < len(src) {
		return fmt.Errorf("%w: %d < %d", ErrDstTooSmall, len(dst), len(src))
	}
	if overlaps(dst, src) {
		return ErrAliased
	}
	if !mode.Valid() {
		return &ModeError{Mode: mode}
	}

	dst = dst[:len(src)]
	r := rowShift(mode, speed, tick, side)
	switch {
	case mode.IsVertical():
		rotateFlat(dst, src, r*side)
	case mode.IsHorizontal():
		rotateRows(dst, src, r, side)
	default:
		copy(dst, src)
	}
	return nil
}

// rotateFlat sets dst[i] = src[(off+i) mod len(src)] for off in [0, len).
// Because off is a multiple of the row size this moves whole rows.
func rotateFlat(dst, src []uint32, off int) {
	n := len(src)
	copy(dst, src[off:])
	copy(dst[n-off:], src[:off])
}

// rotateRows sets dst[b+j] = src[b + (off+j) mod side] for every row block b.
// No pixel crosses a row boundary.
func rotateRows(dst, src []uint32, off, side int) {
	for b := 0; b < len(src); b += side {
		row := src[b : b+side]
		out := dst[b : b+side]
		copy(out, row[off:])
		copy(out[side-off:], row[:off])
	}
}

// overlaps reports whether a and b share any element of backing memory.
func overlaps(a, b []uint32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const size = unsafe.Sizeof(uint32(0))
	a0 := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	b0 := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	a1 := a0 + uintptr(len(a))*size
	b1 := b0 + uintptr(len(b))*size
	return a0 < b1 && b0 < a1
}
