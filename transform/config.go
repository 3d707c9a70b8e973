package transform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/typetrans/internal"
	"github.com/gnoswap-labs/typetrans/rule"
)

const (
	// DefaultConfigName is the configuration file looked up in the working directory.
	DefaultConfigName = ".typetrans.yaml"
	// BaseProfile is the title given to the first profile by default.
	BaseProfile = "global"
)

var ErrNoProfiles = errors.New("configuration has no profiles")

// Profile is a named rule text. Every profile but the first extends the
// first one.
type Profile struct {
	Title     string `yaml:"title" mapstructure:"title"`
	Content   string `yaml:"content,omitempty" mapstructure:"content"`
	RulesFile string `yaml:"rules_file,omitempty" mapstructure:"rules_file"`
}

// Config represents the overall configuration.
type Config struct {
	Name          string    `yaml:"name" mapstructure:"name"`
	Encoding      string    `yaml:"encoding" mapstructure:"encoding"`
	BaseDir       string    `yaml:"base_dir" mapstructure:"base_dir"`
	Debug         bool      `yaml:"debug" mapstructure:"debug"`
	ActiveProfile string    `yaml:"active_profile" mapstructure:"active_profile"`
	Profiles      []Profile `yaml:"profiles" mapstructure:"profiles"`
}

// DefaultConfig holds the default rules as its only profile.
func DefaultConfig() Config {
	return Config{
		Name:          "typetrans",
		Encoding:      rule.UTF8.String(),
		BaseDir:       ".",
		ActiveProfile: BaseProfile,
		Profiles: []Profile{
			{Title: BaseProfile, Content: rule.DefaultRules},
		},
	}
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return config, nil
}

// WriteConfig writes config to path as YAML.
func WriteConfig(path string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Settings converts the engine related fields.
func (c Config) Settings() (internal.Settings, error) {
	enc, err := rule.ParseEncoding(c.Encoding)
	if err != nil {
		return internal.Settings{}, err
	}
	return internal.Settings{Encoding: enc, BaseDir: c.BaseDir}, nil
}

// Profile returns the profile called title.
func (c Config) Profile(title string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.Title == title {
			return p, true
		}
	}
	return Profile{}, false
}

// Titles lists the profile titles in order.
func (c Config) Titles() []string {
	titles := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		titles[i] = p.Title
	}
	return titles
}

// Resolve returns the rule text of the profile called title, or of the
// active profile when title is empty. Any profile but the first is
// compiled after the first profile's rules.
func (c Config) Resolve(title string) (string, error) {
	if len(c.Profiles) == 0 {
		return "", ErrNoProfiles
	}
	if title == "" {
		title = c.ActiveProfile
	}
	if title == "" {
		title = c.Profiles[0].Title
	}

	base, err := c.content(c.Profiles[0])
	if err != nil {
		return "", err
	}
	if title == c.Profiles[0].Title {
		return base, nil
	}

	p, ok := c.Profile(title)
	if !ok {
		return "", fmt.Errorf("unknown profile %q (have %s)", title, strings.Join(c.Titles(), ", "))
	}
	content, err := c.content(p)
	if err != nil {
		return "", err
	}
	return base + "\n" + content, nil
}

// content returns the inline rules of p, or the rules file it points to.
func (c Config) content(p Profile) (string, error) {
	if p.RulesFile == "" {
		return p.Content, nil
	}
	path := p.RulesFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rules of profile %q: %w", p.Title, err)
	}
	return string(data), nil
}
