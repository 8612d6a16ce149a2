package texio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"

	// Decoders registered with image.Decode.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// Decode reads an image in any registered format (PNG, JPEG, GIF, BMP,
// TIFF, WebP) and converts it with FromImage.
func Decode(r io.Reader, fit FitMode) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texio: decode: %w", err)
	}
	return FromImage(img, fit)
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte, fit FitMode) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data), fit)
}

// LoadFile decodes the image file at path.
func LoadFile(path string, fit FitMode) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("texio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := Decode(bufio.NewReader(f), fit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// EncodePNG writes one frame as PNG.
func EncodePNG(w io.Writer, pix []uint32) error {
	img, err := ToNRGBA(pix)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("texio: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes one frame to a PNG file.
func SavePNG(path string, pix []uint32) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("texio: create file: %w", err)
	}
	if err := EncodePNG(f, pix); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// EncodeGIF writes frames as a looping animated GIF. delay is the time
// between frames in hundredths of a second. Frames are dithered onto the
// Plan 9 palette.
func EncodeGIF(w io.Writer, frames [][]uint32, delay int) error {
	if len(frames) == 0 {
		return ErrEmptyData
	}

	anim := &gif.GIF{
		Image: make([]*image.Paletted, 0, len(frames)),
		Delay: make([]int, 0, len(frames)),
	}
	for i, pix := range frames {
		src, err := ToNRGBA(pix)
		if err != nil {
			return fmt.Errorf("texio: frame %d: %w", i, err)
		}
		dst := image.NewPaletted(src.Bounds(), color.Palette(palette.Plan9))
		xdraw.FloydSteinberg.Draw(dst, dst.Bounds(), src, image.Point{})
		anim.Image = append(anim.Image, dst)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("texio: encode GIF: %w", err)
	}
	return nil
}

// SaveGIF writes frames to an animated GIF file.
func SaveGIF(path string, frames [][]uint32, delay int) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("texio: create file: %w", err)
	}
	if err := EncodeGIF(f, frames, delay); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
