package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultLabel names the profile created by InitDefaultConfig.
const DefaultLabel = "Default"

var (
	ErrNoConfig       = errors.New("no config selected")
	ErrProfileMissing = errors.New("config profile does not exist")
	ErrProfileExists  = errors.New("config profile already exists")
	ErrInvalidLabel   = errors.New("invalid config label")
)

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "featsnap")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "featsnap")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "featsnap")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

// ProfilePath is where the profile with the given label lives.
func ProfilePath(label string) string {
	return filepath.Join(ConfigsDir(), label+".yaml")
}

func checkLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: label cannot be empty", ErrInvalidLabel)
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return nil
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0755)
}

func CurrentLabel() (string, error) {
	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}

	return label, nil
}

func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil {
		return "", err
	}

	return ProfilePath(label), nil
}

type ConfigInfo struct {
	Label  string
	Path   string
	Active bool
}

func ListConfigs() ([]ConfigInfo, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ConfigsDir())
	if err != nil {
		return nil, err
	}

	activeLabel, _ := CurrentLabel()
	var out []ConfigInfo

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, ConfigInfo{
			Label:  label,
			Path:   filepath.Join(ConfigsDir(), name),
			Active: label == activeLabel,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func setCurrent(label string) error {
	if err := ensureDirs(); err != nil {
		return err
	}
	return os.WriteFile(CurrentLabelFile(), []byte(label), 0644)
}

func SwitchConfig(label string) error {
	if err := checkLabel(label); err != nil {
		return err
	}

	if _, err := os.Stat(ProfilePath(label)); err != nil {
		return fmt.Errorf("%w: %q", ErrProfileMissing, label)
	}

	return setCurrent(label)
}

// CreateConfig writes a profile holding the default values. It does not
// change the active profile.
func CreateConfig(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := ProfilePath(label)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %q", ErrProfileExists, label)
	}

	if err := SaveYAML(DefaultConfig(), path); err != nil {
		return "", err
	}

	return path, nil
}

// RemoveConfig deletes a profile. Removing the active profile falls back to
// Default; the Default profile itself cannot be removed.
func RemoveConfig(label string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	if label == DefaultLabel {
		return fmt.Errorf("cannot remove the %s config", DefaultLabel)
	}

	path := ProfilePath(label)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %q", ErrProfileMissing, label)
	}

	if active, _ := CurrentLabel(); active == label {
		if err := SwitchConfig(DefaultLabel); err != nil {
			return fmt.Errorf("failed switching to %s: %w", DefaultLabel, err)
		}
	}

	return os.Remove(path)
}

// InitDefaultConfig creates the Default profile and makes it active. If it
// already exists it is only activated and os.ErrExist is returned with its
// path.
func InitDefaultConfig() (string, error) {
	path, err := CreateConfig(DefaultLabel)
	if err != nil && !errors.Is(err, ErrProfileExists) {
		return "", err
	}

	if serr := setCurrent(DefaultLabel); serr != nil {
		return "", serr
	}
	if err != nil {
		return path, os.ErrExist
	}

	return path, nil
}
