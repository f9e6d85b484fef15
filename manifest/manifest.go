// Package manifest describes a set of named sound locators and registers them with a player
package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/sfx/core"
)

// ErrInvalidManifest marks a manifest that failed validation
var ErrInvalidManifest = errors.New("invalid manifest")

// Entry is one name to locator mapping
type Entry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Manifest lists sounds to register
type Manifest struct {
	// BaseURL resolves relative entry urls; empty leaves them to the player
	BaseURL string  `yaml:"base_url,omitempty"`
	Sounds  []Entry `yaml:"sounds"`
}

// Parse decodes and validates YAML manifest data
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at filename
func Load(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("manifest: load %s: %w", filename, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", filename, err)
	}
	return m, nil
}

// Default returns the game catalogue with locators under core.SoundsDir
func Default() *Manifest {
	m := &Manifest{Sounds: make([]Entry, 0, core.SoundIDCount)}
	for _, id := range core.Sounds() {
		m.Sounds = append(m.Sounds, Entry{Name: id.Name(), URL: id.Path()})
	}
	return m
}

// Validate checks names and urls are present and names unique
func (m *Manifest) Validate() error {
	if m.BaseURL != "" {
		if _, err := url.Parse(m.BaseURL); err != nil {
			return fmt.Errorf("%w: base_url: %v", ErrInvalidManifest, err)
		}
	}

	seen := make(map[string]bool, len(m.Sounds))
	for i, e := range m.Sounds {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: sounds[%d]: empty name", ErrInvalidManifest, i)
		}
		if strings.TrimSpace(e.URL) == "" {
			return fmt.Errorf("%w: sounds[%d] %q: empty url", ErrInvalidManifest, i, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: sounds[%d]: duplicate name %q", ErrInvalidManifest, i, e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Names returns entry names in manifest order
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Sounds))
	for i, e := range m.Sounds {
		names[i] = e.Name
	}
	return names
}

// Locator returns the url for e, resolved against BaseURL when set
func (m *Manifest) Locator(e Entry) string {
	if m.BaseURL == "" {
		return e.URL
	}
	ref, err := url.Parse(e.URL)
	if err != nil || ref.IsAbs() {
		return e.URL
	}
	base, err := url.Parse(m.BaseURL)
	if err != nil {
		return e.URL
	}
	if base.Scheme == "" {
		// Plain directory base
		return path.Join(m.BaseURL, e.URL)
	}
	return base.ResolveReference(ref).String()
}

// Marshal encodes the manifest as YAML
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// Save writes the manifest to filename
func (m *Manifest) Save(filename string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
