// Package texio loads tile textures from image files into the flat ARGB
// pixel buffers animated by tileanim, and encodes animated frames back
// into images.
package texio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/tileanim"
)

// Errors returned by conversions.
var (
	// ErrEmptyData is returned when there is nothing to decode.
	ErrEmptyData = errors.New("texio: empty data")

	// ErrNotSquare is returned for non-square images under FitNone.
	ErrNotSquare = errors.New("texio: image is not square")
)

// FitMode selects what happens to images that are not 64x64 or 128x128.
type FitMode uint8

const (
	// FitNone rejects unsupported sizes.
	FitNone FitMode = iota

	// FitScale resamples to the nearest supported side.
	FitScale
)

// String returns the manifest name of the fit mode.
func (f FitMode) String() string {
	if f == FitScale {
		return "scale"
	}
	return "none"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FitMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "none":
		*f = FitNone
	case "scale":
		*f = FitScale
	default:
		return fmt.Errorf("texio: unknown fit mode %q", string(text))
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (f FitMode) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Image is a decoded tile texture.
//
// Pix holds Side*Side non-premultiplied colors packed as A<<24|R<<16|G<<8|B,
// row-major from the top-left corner.
type Image struct {
	Side int
	Pix  []uint32
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	pix := make([]uint32, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Side: m.Side, Pix: pix}
}

// PackARGB packs 8-bit channels into one pixel.
func PackARGB(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackARGB splits a pixel into 8-bit channels.
func UnpackARGB(p uint32) (r, g, b, a uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p), uint8(p >> 24)
}

// nearestSide picks the supported side closest to the larger dimension.
func nearestSide(w, h int) int {
	if max(w, h) <= (tileanim.SideSmall+tileanim.SideLarge)/2 {
		return tileanim.SideSmall
	}
	return tileanim.SideLarge
}

// FromImage converts img into a tile texture.
//
// Square images with a supported side convert pixel for pixel. Other sizes
// return ErrNotSquare or tileanim.ErrUnsupportedSize under FitNone, and are
// resampled with Catmull-Rom under FitScale.
func FromImage(img image.Image, fit FitMode) (*Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyData
	}

	side := w
	if w != h || tileanim.SideFor(w*h) == 0 {
		if fit != FitScale {
			if w != h {
				return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, w, h)
			}
			return nil, fmt.Errorf("texio: %dx%d: %w", w, h, tileanim.ErrUnsupportedSize)
		}
		side = nearestSide(w, h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	if side == w && side == h {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	}
	return &Image{Side: side, Pix: packNRGBA(dst)}, nil
}

func packNRGBA(m *image.NRGBA) []uint32 {
	side := m.Rect.Dx()
	pix := make([]uint32, side*side)
	for y := range side {
		row := m.Pix[y*m.Stride : y*m.Stride+side*4]
		for x := range side {
			o := x * 4
			pix[y*side+x] = PackARGB(row[o], row[o+1], row[o+2], row[o+3])
		}
	}
	return pix
}

// ToNRGBA converts a flat ARGB buffer into an image. It returns
// tileanim.ErrUnsupportedSize when len(pix) is not a supported size.
func ToNRGBA(pix []uint32) (*image.NRGBA, error) {
	side := tileanim.SideFor(len(pix))
	if side == 0 {
		return nil, fmt.Errorf("texio: %d pixels: %w", len(pix), tileanim.ErrUnsupportedSize)
	}
	m := image.NewNRGBA(image.Rect(0, 0, side, side))
	WriteNRGBA(m.Pix, pix)
	return m, nil
}

// WriteNRGBA writes pix as 8-bit R,G,B,A quadruplets into dst, which must
// hold 4*len(pix) bytes. Hosts use it to upload frames without allocating.
func WriteNRGBA(dst []byte, pix []uint32) {
	if len(pix) == 0 {
		return
	}
	_ = dst[len(pix)*4-1]
	for i, p := range pix {
		r, g, b, a := UnpackARGB(p)
		o := i * 4
		dst[o] = r
		dst[o+1] = g
		dst[o+2] = b
		dst[o+3] = a
	}
}

// At returns the color of pixel (x, y).
func (m *Image) At(x, y int) color.NRGBA {
	r, g, b, a := UnpackARGB(m.Pix[y*m.Side+x])
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
