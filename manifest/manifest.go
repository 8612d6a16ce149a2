// Package manifest describes a set of animated tile textures in YAML and
// keeps an atlas in sync with it.
//
//	fit: scale
//	textures:
//	  - id: 17
//	    path: water.png
//	    mode: scroll_down
//	    speed: 2
//	  - id: 24
//	    path: lava.png
//	    direction: 1   # legacy direction code
//	    speed: 2
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/tileanim"
	"github.com/gogpu/tileanim/texio"
)

// ErrInvalidManifest is returned when a manifest fails validation.
var ErrInvalidManifest = errors.New("manifest: invalid")

// Manifest lists the textures of a scene.
type Manifest struct {
	// Fit is "none" (default) or "scale".
	Fit      string  `yaml:"fit"`
	Textures []Entry `yaml:"textures"`

	// Path is the cleaned path the manifest was loaded from, if any.
	Path string `yaml:"-"`
}

// Entry is one texture.
type Entry struct {
	ID   int    `yaml:"id"`
	Path string `yaml:"path"`

	// Mode is a mode name such as "scroll_up". Direction is the legacy
	// numeric code. At most one of them may be set; neither means none.
	Mode      string `yaml:"mode,omitempty"`
	Direction *int   `yaml:"direction,omitempty"`

	Speed int `yaml:"speed"`
}

// AnimationMode returns the entry's animation mode.
func (e Entry) AnimationMode() (tileanim.Mode, error) {
	if e.Mode != "" && e.Direction != nil {
		return tileanim.ModeNone, fmt.Errorf("%w: texture %d sets both mode and direction", ErrInvalidManifest, e.ID)
	}
	if e.Direction != nil {
		return tileanim.ModeFromLegacy(*e.Direction), nil
	}
	var m tileanim.Mode
	if err := m.UnmarshalText([]byte(e.Mode)); err != nil {
		return tileanim.ModeNone, fmt.Errorf("%w: texture %d: %w", ErrInvalidManifest, e.ID, err)
	}
	return m, nil
}

// FitMode returns the parsed fit mode.
func (m *Manifest) FitMode() (texio.FitMode, error) {
	var f texio.FitMode
	if err := f.UnmarshalText([]byte(m.Fit)); err != nil {
		return texio.FitNone, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return f, nil
}

// Parse decodes and validates a manifest. Relative texture paths are
// resolved against dir and all paths are cleaned.
func Parse(data []byte, dir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal: %w", err)
	}
	for i := range m.Textures {
		p := m.Textures[i].Path
		switch {
		case p == "":
		case filepath.IsAbs(p):
			m.Textures[i].Path = filepath.Clean(p)
		default:
			m.Textures[i].Path = filepath.Join(dir, p)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	path = filepath.Clean(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: load %s: %w", path, err)
	}
	m, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path

	tileanim.ComponentLogger("manifest").Info("manifest loaded",
		"path", path,
		"textures", len(m.Textures))
	return m, nil
}

// Validate checks that IDs are unique, paths are set, speeds are not
// negative and modes are known.
func (m *Manifest) Validate() error {
	if _, err := m.FitMode(); err != nil {
		return err
	}

	var errs []error
	seen := make(map[int]bool, len(m.Textures))
	for _, e := range m.Textures {
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate texture id %d", ErrInvalidManifest, e.ID))
		}
		seen[e.ID] = true

		if e.Path == "" {
			errs = append(errs, fmt.Errorf("%w: texture %d has no path", ErrInvalidManifest, e.ID))
		}
		if e.Speed < 0 {
			errs = append(errs, fmt.Errorf("%w: texture %d has negative speed %d", ErrInvalidManifest, e.ID, e.Speed))
		}
		if _, err := e.AnimationMode(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Files returns the manifest path (if any) and every texture path.
func (m *Manifest) Files() []string {
	files := make([]string, 0, len(m.Textures)+1)
	if m.Path != "" {
		files = append(files, m.Path)
	}
	for _, e := range m.Textures {
		files = append(files, e.Path)
	}
	return files
}
