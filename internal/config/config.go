package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFileName is the config file looked up in the working directory
const DefaultFileName = ".jiracheck.toml"

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Jira       JiraConfig       `toml:"jira" mapstructure:"jira"`
	Range      RangeConfig      `toml:"range" mapstructure:"range"`
	Tickets    TicketsConfig    `toml:"tickets" mapstructure:"tickets"`
	Validation ValidationConfig `toml:"validation" mapstructure:"validation"`
	Output     OutputConfig     `toml:"output" mapstructure:"output"`
	Logging    LoggingConfig    `toml:"logging" mapstructure:"logging"`

	// Compiled regex from Tickets.Pattern (not serialized)
	keyRegex *regexp.Regexp
}

type JiraConfig struct {
	URL      string `toml:"url" mapstructure:"url"`
	Username string `toml:"username" mapstructure:"username"`
	APIToken string `toml:"api_token" mapstructure:"api_token"`
	// Timeout per lookup; zero waits indefinitely. Accepts "30s" style strings.
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
}

type RangeConfig struct {
	StartRef string `toml:"start_ref" mapstructure:"start_ref"`
	EndRef   string `toml:"end_ref" mapstructure:"end_ref"`
	RepoPath string `toml:"repo_path" mapstructure:"repo_path"`
}

type TicketsConfig struct {
	Pattern string `toml:"pattern" mapstructure:"pattern"`
}

type ValidationConfig struct {
	Concurrency int `toml:"concurrency" mapstructure:"concurrency"`
}

type OutputConfig struct {
	Format  string `toml:"format" mapstructure:"format"`
	File    string `toml:"file" mapstructure:"file"`
	NoColor bool   `toml:"no_color" mapstructure:"no_color"`
}

type LoggingConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Range: RangeConfig{
			RepoPath: ".",
		},
		Tickets: TicketsConfig{
			Pattern: "[A-Z]+-[0-9]+",
		},
		Validation: ValidationConfig{
			Concurrency: 1,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"jira-url":    "jira.url",
	"username":    "jira.username",
	"api-token":   "jira.api_token",
	"timeout":     "jira.timeout",
	"start-ref":   "range.start_ref",
	"end-ref":     "range.end_ref",
	"repo":        "range.repo_path",
	"key-pattern": "tickets.pattern",
	"concurrency": "validation.concurrency",
	"format":      "output.format",
	"output":      "output.file",
	"no-color":    "output.no_color",
	"log-level":   "logging.level",
}

// envAliases are the unprefixed variable names accepted for credentials
var envAliases = map[string]string{
	"jira.url":       "JIRA_URL",
	"jira.username":  "JIRA_USERNAME",
	"jira.api_token": "JIRA_API_TOKEN",
}

// LoadOptions tells Load where to look for each layer
type LoadOptions struct {
	// Path of the TOML file. Empty means DefaultFileName, which may be absent.
	Path string
	// EnvFiles are dotenv files loaded into the environment; missing files are skipped
	EnvFiles []string
	// Flags are bound on top of everything else; only changed flags override
	Flags *pflag.FlagSet
}

// Load builds the configuration from, lowest precedence first: defaults,
// the TOML file, dotenv files, the environment and command-line flags.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	fileValues, err := readFile(opts.Path)
	if err != nil {
		return nil, err
	}
	if fileValues != nil {
		if err := v.MergeConfigMap(fileValues); err != nil {
			return nil, fmt.Errorf("merge config file: %w", err)
		}
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("JIRACHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.compileRegex(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("jira.url", d.Jira.URL)
	v.SetDefault("jira.username", d.Jira.Username)
	v.SetDefault("jira.api_token", d.Jira.APIToken)
	v.SetDefault("jira.timeout", d.Jira.Timeout)

	v.SetDefault("range.start_ref", d.Range.StartRef)
	v.SetDefault("range.end_ref", d.Range.EndRef)
	v.SetDefault("range.repo_path", d.Range.RepoPath)

	v.SetDefault("tickets.pattern", d.Tickets.Pattern)

	v.SetDefault("validation.concurrency", d.Validation.Concurrency)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("output.no_color", d.Output.NoColor)

	v.SetDefault("logging.level", d.Logging.Level)
}

func bindEnvs(v *viper.Viper) error {
	for key, alias := range envAliases {
		prefixed := "JIRACHECK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// readFile decodes the TOML file into a generic map for viper to merge
func readFile(path string) (map[string]any, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	values := make(map[string]any)
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return values, nil
}

func loadEnvFiles(files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// Load never overrides variables that are already set
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) compileRegex() error {
	// Empty pattern = default key rule
	if c.Tickets.Pattern == "" {
		c.keyRegex = nil
		return nil
	}
	re, err := regexp.Compile(c.Tickets.Pattern)
	if err != nil {
		return fmt.Errorf("invalid tickets.pattern %q: %w", c.Tickets.Pattern, err)
	}
	c.keyRegex = re
	return nil
}

// KeyRegex returns the compiled ticket pattern regex (nil means the default rule)
func (c *Config) KeyRegex() *regexp.Regexp {
	return c.keyRegex
}

// Validate reports the first missing or malformed setting
func (c *Config) Validate() error {
	switch {
	case c.Jira.URL == "":
		return errors.New("jira url is required (--jira-url or JIRA_URL)")
	case c.Jira.Username == "":
		return errors.New("jira username is required (--username or JIRA_USERNAME)")
	case c.Jira.APIToken == "":
		return errors.New("jira api token is required (--api-token or JIRA_API_TOKEN)")
	case c.Range.StartRef == "":
		return errors.New("start ref is required (--start-ref)")
	case c.Range.EndRef == "":
		return errors.New("end ref is required (--end-ref)")
	case c.Validation.Concurrency < 1:
		return fmt.Errorf("validation.concurrency must be at least 1, got %d", c.Validation.Concurrency)
	case c.Jira.Timeout < 0:
		return fmt.Errorf("jira.timeout must not be negative, got %s", c.Jira.Timeout)
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", c.Output.Format)
	}
	return nil
}

// Save writes c to path, refusing to replace an existing file
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultFileName
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
