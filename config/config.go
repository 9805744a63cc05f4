// Package config handles ramc.toml compiler configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is a ramc.toml project configuration.
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Logging  LoggingConfig  `toml:"logging"`
	Cache    CacheConfig    `toml:"cache"`
}

// CompilerConfig controls codegen and encoder behavior.
type CompilerConfig struct {
	// ParallelMode names a lowering for ram.Parallel statements: "serial"
	// (default) or "fork". ramc and codegen do not read it: each
	// ram.Parallel is lowered by its own Mode field, and a ParallelFork
	// node is rejected by the generator.
	ParallelMode string `toml:"parallel-mode"`

	// MaxDirectArity overrides encoder.DefaultMaxDirectArity, mostly for
	// tests that want to exercise the indirect-storage boundary without
	// huge fixtures.
	MaxDirectArity int `toml:"max-direct-arity"`
}

// LoggingConfig controls the commonlog backend.
type LoggingConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "text" or "json"
}

// CacheConfig controls the compiled-program cache.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Compress bool   `toml:"compress"`
}

// Default returns the configuration used when no ramc.toml is present.
func Default() *Config {
	return &Config{
		Compiler: CompilerConfig{
			ParallelMode:   "serial",
			MaxDirectArity: 12,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Cache: CacheConfig{
			Dir:      ".ramc-cache",
			Compress: true,
		},
	}
}

// Load parses a ramc.toml file at path, filling any field the file omits
// from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Compiler.ParallelMode {
	case "serial", "fork":
	default:
		return fmt.Errorf("config: compiler.parallel-mode must be \"serial\" or \"fork\", got %q", c.Compiler.ParallelMode)
	}
	if c.Compiler.MaxDirectArity <= 0 {
		return fmt.Errorf("config: compiler.max-direct-arity must be positive, got %d", c.Compiler.MaxDirectArity)
	}
	return nil
}
