package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL  = "http://localhost:3000"
	defaultTimeout = 15 * time.Second
	defaultDevice  = "adoptionctl"
)

// Profile is the operator's saved CLI settings.
type Profile struct {
	APIURL   string        `yaml:"api_url"`
	StateDir string        `yaml:"state_dir"`
	Timeout  time.Duration `yaml:"timeout"`
	Device   string        `yaml:"device"`
}

// DefaultProfilePath is profile.yaml under the user config directory.
func DefaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "adoptionos", "profile.yaml")
}

// LoadProfile reads path. A missing file yields the defaults.
func LoadProfile(fsys afero.Fs, path string) (Profile, error) {
	var p Profile
	data, err := afero.ReadFile(fsys, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Profile{}, fmt.Errorf("read profile: %w", err)
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
		}
	}
	p.applyDefaults(path)
	return p, nil
}

// SaveProfile writes p to path, creating the directory.
func SaveProfile(fsys afero.Fs, path string, p Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	return afero.WriteFile(fsys, path, data, 0o600)
}

func (p *Profile) applyDefaults(path string) {
	p.APIURL = strings.TrimRight(strings.TrimSpace(p.APIURL), "/")
	if p.APIURL == "" {
		p.APIURL = defaultAPIURL
	}
	if p.StateDir == "" {
		p.StateDir = filepath.Join(filepath.Dir(path), "state")
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	if p.Device == "" {
		p.Device = defaultDevice
	}
}
