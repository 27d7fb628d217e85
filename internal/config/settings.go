package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// DefaultMaxConcurrentFetches bounds how many account fetches run at once.
const DefaultMaxConcurrentFetches = 5

// Settings is the process-wide settings file.
type Settings struct {
	// DefaultAccount is used by write operations when no account is given.
	DefaultAccount string `json:"default_account,omitempty"`

	// TimeZone is the IANA name of the display timezone every exposed
	// timestamp is normalized into. "Local" uses the host timezone.
	TimeZone string `json:"time_zone,omitempty"`

	// MaxConcurrentFetches bounds parallel per-account fetches.
	MaxConcurrentFetches int `json:"max_concurrent_fetches,omitempty"`
}

// Normalize fills in missing values so partially filled settings files
// still behave correctly.
func (s *Settings) Normalize() {
	if s.TimeZone == "" {
		s.TimeZone = "Local"
	}
	if s.MaxConcurrentFetches <= 0 {
		s.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
}

// Location resolves the configured display timezone.
func (s *Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time_zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// LoadSettings reads the settings file, returning normalized defaults when
// the file does not exist yet.
func (d Dir) LoadSettings() (*Settings, error) {
	var s Settings
	data, err := os.ReadFile(d.SettingsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.Normalize()
			return &s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	s.Normalize()
	return &s, nil
}

// SaveSettings writes the settings file atomically with 0600 permissions.
func (d Dir) SaveSettings(s *Settings) error {
	if s == nil {
		return errors.New("settings is nil")
	}
	s.Normalize()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return WriteFileAtomic(d.SettingsPath(), append(data, '\n'), 0o600)
}
