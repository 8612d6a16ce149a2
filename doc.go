// Package tileanim animates square tile textures by cyclically shifting
// their pixels once per frame.
//
// # Overview
//
// A tile texture is a 64x64 or 128x128 buffer of 32-bit colors stored
// row-major. Animated tiles (water, lava, conveyor surfaces) scroll their
// image in one of four directions; the amount scrolled at a given tick is
// tick*speed rows or columns, wrapping at the edge.
//
// # Quick Start
//
//	tex, err := tileanim.NewTexture(pixels, tileanim.ModeScrollDown, 2)
//	if err != nil {
//	    return err
//	}
//
//	// Once per frame:
//	tex.Animate(tick)
//	upload(tex.Pixels())
//
// # Buffers
//
// Texture keeps two buffers and flips between them on every transform, so
// steady-state animation never allocates. Vertical modes rotate the flat
// buffer by a multiple of the row length, which moves whole rows without a
// nested loop. Horizontal modes rotate each row on its own.
//
// The output for a tick does not depend on the ticks seen before, so a
// renderer may skip frames or restart the tick counter freely.
//
// # Related Packages
//
//   - atlas: a ref-counted registry that animates all textures per frame
//   - texio: decodes image files into pixel buffers and encodes frames
//   - manifest: YAML texture manifests with hot reload
package tileanim
