package tileanim

import "log/slog"

// Texture owns the ping-pong pixel pair of one animated tile texture.
//
// The live buffer starts out as the slice handed to NewTexture or SetPixels;
// the second buffer is allocated on the first transform and reused after
// that. Each transform writes into the idle buffer and flips which one is
// live, so the slice returned by the previous Pixels call keeps its contents
// until the next transform after that.
//
// The contents of Pixels always equal the loaded image shifted for the
// latest tick passed to Animate, independent of the ticks seen before.
//
// Thread safety: a Texture is not safe for concurrent use. Distinct
// textures share no state and may be animated from different goroutines.
type Texture struct {
	bufs [2][]uint32
	cur  int

	side  int
	mode  Mode
	speed int
	tick  int

	// applied is the row shift already present in the live buffer,
	// relative to the loaded image, in [0, side).
	applied int

	version uint64
	grows   int
}

// NewTexture wraps a loaded pixel buffer without copying it.
//
// pixels must hold 4096 (64x64) or 16384 (128x128) values, or be empty for
// a texture whose pixels are not loaded yet. Any other length returns
// ErrUnsupportedSize.
func NewTexture(pixels []uint32, mode Mode, speed int) (*Texture, error) {
	if !mode.Valid() {
		return nil, &ModeError{Mode: mode}
	}
	t := &Texture{mode: mode, speed: speed}
	if err := t.SetPixels(pixels); err != nil {
		return nil, err
	}
	return t, nil
}

// SetPixels installs a newly loaded pixel buffer, taking ownership of it.
// The animation restarts from the unshifted image; the scratch buffer is
// kept when it is large enough.
func (t *Texture) SetPixels(pixels []uint32) error {
	side := 0
	if len(pixels) > 0 {
		var err error
		if side, err = checkLen(len(pixels)); err != nil {
			return err
		}
	}

	idle := 1 - t.cur
	if overlaps(pixels, t.bufs[idle]) {
		t.bufs[idle] = nil
	}
	t.bufs[t.cur] = pixels
	t.side = side
	t.applied = 0
	t.version++
	return nil
}

// Animate brings the live buffer to its arrangement for tick.
//
// An empty texture or ModeNone is left untouched. Otherwise the buffer is
// rotated by rows (vertical modes) or by columns within each row
// (horizontal modes) and the live and scratch buffers are swapped. No
// allocation happens once the scratch buffer exists.
func (t *Texture) Animate(tick int) {
	t.tick = tick
	if t.side == 0 || t.mode.sign() == 0 {
		return
	}

	target := rowShift(t.mode, t.speed, tick, t.side)
	delta := floorMod(target-t.applied, t.side)
	if delta == 0 {
		return
	}

	live := t.bufs[t.cur]
	scratch := t.scratch(len(live))
	if t.mode.IsVertical() {
		rotateFlat(scratch, live, delta*t.side)
	} else {
		rotateRows(scratch, live, delta, t.side)
	}

	t.cur = 1 - t.cur
	t.applied = target
	t.version++
}

// Advance animates the texture forward by cycles ticks from its last tick.
func (t *Texture) Advance(cycles int) {
	t.Animate(t.tick + cycles)
}

// scratch returns the idle buffer resized to n, growing it if needed.
func (t *Texture) scratch(n int) []uint32 {
	idle := 1 - t.cur
	if cap(t.bufs[idle]) < n {
		t.bufs[idle] = make([]uint32, n)
		t.grows++
		Logger().Debug("tileanim: scratch buffer grown",
			slog.Int("pixels", n),
			slog.Int("grows", t.grows))
	} else {
		t.bufs[idle] = t.bufs[idle][:n]
	}
	return t.bufs[idle]
}

// Pixels returns the live buffer. The slice stays valid until the second
// following transform; callers that keep frames longer must copy.
func (t *Texture) Pixels() []uint32 {
	return t.bufs[t.cur]
}

// Tick returns the tick of the latest Animate or Advance call.
func (t *Texture) Tick() int { return t.tick }

// Mode returns the texture's animation mode.
func (t *Texture) Mode() Mode { return t.mode }

// Speed returns the texture's speed factor.
func (t *Texture) Speed() int { return t.speed }

// Side returns the texture side in pixels, or 0 when no pixels are loaded.
func (t *Texture) Side() int { return t.side }

// Len returns the number of pixels in the live buffer.
func (t *Texture) Len() int { return len(t.bufs[t.cur]) }

// Empty reports whether the texture has no pixels yet.
func (t *Texture) Empty() bool { return t.side == 0 }

// Animated reports whether Animate can change the texture's pixels.
func (t *Texture) Animated() bool {
	return t.side != 0 && t.mode.sign() != 0
}

// Version increases whenever the contents of Pixels change.
func (t *Texture) Version() uint64 { return t.version }

// Grows returns how many times the scratch buffer has been allocated.
func (t *Texture) Grows() int { return t.grows }

// ModeError is returned when a texture is created with an undefined mode.
type ModeError struct {
	Mode Mode
}

func (e *ModeError) Error() string {
	return "tileanim: invalid mode " + e.Mode.String()
}
