package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings holds the user-editable options read from settings.yaml.
type Settings struct {
	Language string  `yaml:"language"`
	Feed     Feed    `yaml:"feed"`
	CardDAV  CardDAV `yaml:"carddav"`
}

// Feed controls the local birthday calendar server.
type Feed struct {
	Enabled  bool   `yaml:"enabled"`
	Port     string `yaml:"port"`
	Reminder string `yaml:"reminder"` // ISO-8601 trigger, e.g. "-P1D". Empty disables alarms.
}

// CardDAV identifies the remote address book used by import-url.
// The password is never stored here; it lives in the OS keyring.
type CardDAV struct {
	URL  string `yaml:"url"`
	User string `yaml:"user"`
}

// reminderPattern accepts the subset of ISO-8601 durations iCalendar triggers use.
var reminderPattern = regexp.MustCompile(`^-?P(\d+[DW]|T\d+[HM]|\d+DT\d+[HM])$`)

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Language: DefaultLanguage,
		Feed: Feed{
			Port: DefaultPort,
		},
	}
}

// LoadSettings reads a YAML settings file. A missing or empty file yields the defaults.
// Unknown keys are rejected so typos surface immediately.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return &s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &s, nil
		}
		return nil, fmt.Errorf("%s %s: %w", ErrSettingsRead, path, err)
	}
	if len(data) == 0 {
		return &s, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		// Comment-only files decode to EOF.
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("%s %s: %w", ErrSettingsParse, path, err)
	}
	return &s, nil
}

// ApplyEnv overrides settings from ADDRESSBOOK_* environment variables.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvLanguage); v != "" {
		s.Language = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		s.Feed.Port = v
	}
	if v := os.Getenv(EnvCardDAVURL); v != "" {
		s.CardDAV.URL = v
	}
	if v := os.Getenv(EnvCardDAVUser); v != "" {
		s.CardDAV.User = v
	}
}

// Validate checks that settings values are usable.
func (s *Settings) Validate() error {
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}
	if s.Feed.Enabled {
		if err := ValidatePort(s.Feed.Port); err != nil {
			return err
		}
	}
	if s.Feed.Reminder != "" && !reminderPattern.MatchString(s.Feed.Reminder) {
		return fmt.Errorf("%s: %q", ErrReminder, s.Feed.Reminder)
	}
	return nil
}

// ValidatePort checks that port is a TCP port number in range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
