package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".cratergraph.yml"

// Config is the top-level cratergraph configuration.
type Config struct {
	Data       DataConfig       `yaml:"data" toml:"data"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Supervisor SupervisorConfig `yaml:"supervisor" toml:"supervisor"`
	Search     SearchConfig     `yaml:"search" toml:"search"`
}

// DataConfig locates the ingestion inputs on disk.
type DataConfig struct {
	Dir         string `yaml:"dir" toml:"dir"`                   // directory containing the seven CSV tables
	TargetsFile string `yaml:"targets_file" toml:"targets_file"` // semicolon-delimited target/cfg table
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
	// DefaultTarget/DefaultCfgName seed resolver queries that omit an
	// explicit target triple, e.g. when a client asks for the host's
	// own dependency closure without naming a platform.
	DefaultTarget  string `yaml:"default_target" toml:"default_target"`
	DefaultCfgName string `yaml:"default_cfg_name" toml:"default_cfg_name"`
}

// SupervisorConfig overrides refresh timing. Zero values fall back to the
// package defaults (23h55m interval).
type SupervisorConfig struct {
	RefreshIntervalMinutes int  `yaml:"refresh_interval_minutes" toml:"refresh_interval_minutes"`
	WatchDir               bool `yaml:"watch_dir" toml:"watch_dir"`
}

// Interval returns the configured refresh interval as a duration.
func (s SupervisorConfig) Interval() time.Duration {
	return time.Duration(s.RefreshIntervalMinutes) * time.Minute
}

// SearchConfig overrides the ranked-result cap.
type SearchConfig struct {
	ResultCap int `yaml:"result_cap" toml:"result_cap"`
}

// Load reads configuration from path (YAML or TOML, by extension).
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
// Discards validation warnings; use LoadWithWarnings for full diagnostics.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithWarnings(path)
	return cfg, err
}

// LoadWithWarnings reads configuration from a YAML or TOML file and returns
// validation warnings alongside the config.
func LoadWithWarnings(path string) (*Config, []string, error) {
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil, nil
		}
		return nil, nil, err
	}

	cfg := defaults()
	if err := decode(path, data, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	warnings, verr := Validate(cfg)
	if verr != nil {
		return nil, warnings, fmt.Errorf("validating %s: %w", path, verr)
	}

	return cfg, warnings, nil
}

// decode picks a codec by file extension. ".toml" decodes with go-toml,
// everything else decodes as YAML with unknown-field rejection.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func defaults() *Config {
	return &Config{
		Data: DataConfig{
			Dir:         "data",
			TargetsFile: "targets.txt",
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Supervisor: SupervisorConfig{
			RefreshIntervalMinutes: 23*60 + 55,
		},
		Search: SearchConfig{
			ResultCap: 10,
		},
	}
}
