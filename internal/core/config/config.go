package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"hookdeps/internal/engine/analyzer"
	"hookdeps/internal/shared/util"
)

type Config struct {
	Version   int      `toml:"version"`
	ScanPaths []string `toml:"scan_paths"`
	Exclude   Exclude  `toml:"exclude"`
	Analyzer  Analyzer `toml:"analyzer"`
	Watch     Watch    `toml:"watch"`
	DB        Database `toml:"db"`
	Metrics   Metrics  `toml:"metrics"`
	Tracing   Tracing  `toml:"tracing"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Analyzer struct {
	AdditionalCallSites string            `toml:"additional_call_sites"`
	AutoInfer           []string          `toml:"auto_infer"`
	RequireExplicitList bool              `toml:"require_explicit_list"`
	EnableUnsafeAutofix bool              `toml:"enable_unsafe_autofix"`
	Budget              Budget            `toml:"budget"`
	Severity            map[string]string `toml:"severity"`
	Containers          Containers        `toml:"containers"`
}

type Budget struct {
	MaxNodes int           `toml:"max_nodes"`
	MaxTime  time.Duration `toml:"max_time"`
}

type Containers struct {
	Creators       []string `toml:"creators"`
	Suffixes       []string `toml:"suffixes"`
	Modules        []string `toml:"modules"`
	StableCreators []string `toml:"stable_creators"`
	StateCreators  []string `toml:"state_creators"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

type Tracing struct {
	Endpoint string `toml:"endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateAnalyzer(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", "dist", "build", ".git"}
	}

	if cfg.Analyzer.Budget.MaxNodes <= 0 {
		cfg.Analyzer.Budget.MaxNodes = 50000
	}
	if cfg.Analyzer.Budget.MaxTime <= 0 {
		cfg.Analyzer.Budget.MaxTime = 2 * time.Second
	}

	base := analyzer.DefaultOptions()
	if len(cfg.Analyzer.Containers.Creators) == 0 {
		cfg.Analyzer.Containers.Creators = util.SortedStringKeys(base.ContainerCreators)
	}
	if len(cfg.Analyzer.Containers.Suffixes) == 0 {
		cfg.Analyzer.Containers.Suffixes = append([]string(nil), base.ContainerSuffixes...)
	}
	if len(cfg.Analyzer.Containers.Modules) == 0 {
		cfg.Analyzer.Containers.Modules = util.SortedStringKeys(base.CreatorModules)
	}
	if len(cfg.Analyzer.Containers.StableCreators) == 0 {
		cfg.Analyzer.Containers.StableCreators = util.SortedStringKeys(base.StableCreators)
	}
	if len(cfg.Analyzer.Containers.StateCreators) == 0 {
		cfg.Analyzer.Containers.StateCreators = util.SortedStringKeys(base.StateCreators)
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "hookdeps.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.Metrics.Addr) == "" {
		cfg.Metrics.Addr = "127.0.0.1:9464"
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; only version 1 is supported", cfg.Version)
	}
	return nil
}

func validateAnalyzer(cfg *Config) error {
	if pattern := strings.TrimSpace(cfg.Analyzer.AdditionalCallSites); pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("analyzer.additional_call_sites: %w", err)
		}
	}
	for code, level := range cfg.Analyzer.Severity {
		switch level {
		case "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("analyzer.severity.%s: unknown level %q", code, level)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled is true")
	}
	return nil
}

// AnalyzerOptions converts the config surface into analyzer options.
func (c *Config) AnalyzerOptions() (*analyzer.Options, error) {
	opts := analyzer.DefaultOptions()

	if pattern := strings.TrimSpace(c.Analyzer.AdditionalCallSites); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("analyzer.additional_call_sites: %w", err)
		}
		opts.AdditionalCallSites = re
	}

	for _, name := range c.Analyzer.AutoInfer {
		opts.AutoInfer[name] = true
	}
	opts.RequireExplicitList = c.Analyzer.RequireExplicitList
	opts.EnableUnsafeAutofix = c.Analyzer.EnableUnsafeAutofix

	opts.MaxNodes = c.Analyzer.Budget.MaxNodes
	opts.MaxTime = c.Analyzer.Budget.MaxTime

	opts.ContainerCreators = nameSet(c.Analyzer.Containers.Creators)
	opts.ContainerSuffixes = append([]string(nil), c.Analyzer.Containers.Suffixes...)
	opts.CreatorModules = nameSet(c.Analyzer.Containers.Modules)
	opts.StableCreators = nameSet(c.Analyzer.Containers.StableCreators)
	opts.StateCreators = nameSet(c.Analyzer.Containers.StateCreators)

	for code, level := range c.Analyzer.Severity {
		opts.Severity[analyzer.Code(code)] = analyzer.ParseSeverity(level, analyzer.SeverityWarn)
	}

	return opts, nil
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = true
		}
	}
	return set
}
