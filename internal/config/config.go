package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brogergvhs/featsnap/internal/snapshot"
	"github.com/brogergvhs/featsnap/internal/source"
	"github.com/brogergvhs/featsnap/internal/util"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. FEATSNAP_OUTPUT.
const EnvPrefix = "featsnap"

type Config struct {
	Output    string        `yaml:"output"`
	SourceURL string        `yaml:"source_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Debug     bool          `yaml:"debug"`
	Progress  bool          `yaml:"progress"`
}

// Options carries values given on the command line. Zero values mean
// "not given" and leave the lower layers alone.
type Options struct {
	IgnoreConfig bool
	Debug        bool
	NoProgress   bool
	Output       string
	SourceURL    string
	Timeout      time.Duration
	UserAgent    string
}

// envOverrides holds the FEATSNAP_* variables. Unset variables stay nil.
type envOverrides struct {
	Output     *string        `envconfig:"OUTPUT"`
	SourceURL  *string        `envconfig:"SOURCE_URL"`
	Timeout    *time.Duration `envconfig:"TIMEOUT"`
	UserAgent  *string        `envconfig:"USER_AGENT"`
	Debug      *bool          `envconfig:"DEBUG"`
	NoProgress *bool          `envconfig:"NO_PROGRESS"`
}

func DefaultConfig() *Config {
	return &Config{
		Output:    snapshot.DefaultPath,
		SourceURL: source.DefaultURL,
		Timeout:   source.DefaultTimeout,
		UserAgent: util.DefaultUserAgent,
		Debug:     false,
		Progress:  true,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged resolves the effective configuration. Flags win over the
// environment, which wins over the active profile, which wins over the
// built-in defaults. The second return value describes where the profile
// came from.
func LoadMerged(opts Options) (*Config, string, error) {
	cfg, used, err := loadProfile(opts.IgnoreConfig)
	if err != nil {
		return nil, "", err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, "", err
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, used, nil
}

func loadProfile(ignore bool) (*Config, string, error) {
	if ignore {
		return DefaultConfig(), "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		return DefaultConfig(), "(default config in memory)\nRun `featsnap config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return cfg, activePath, nil
}

func applyEnv(c *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}

	if env.Output != nil {
		c.Output = *env.Output
	}
	if env.SourceURL != nil {
		c.SourceURL = *env.SourceURL
	}
	if env.Timeout != nil {
		c.Timeout = *env.Timeout
	}
	if env.UserAgent != nil {
		c.UserAgent = *env.UserAgent
	}
	if env.Debug != nil {
		c.Debug = *env.Debug
	}
	if env.NoProgress != nil {
		c.Progress = !*env.NoProgress
	}

	return nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.SourceURL != "" {
		c.SourceURL = o.SourceURL
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Debug {
		c.Debug = true
	}
	if o.NoProgress {
		c.Progress = false
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = snapshot.DefaultPath
	}
	if c.SourceURL == "" {
		c.SourceURL = source.DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = source.DefaultTimeout
	}
	c.UserAgent = util.PickUserAgent(c.UserAgent)
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -source_url: %s\n", c.SourceURL)
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	if c.UserAgent != util.DefaultUserAgent {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if !c.Progress {
		fmt.Fprintf(w, " -progress: %t\n", c.Progress)
	}
}
