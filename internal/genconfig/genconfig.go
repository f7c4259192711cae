// Package genconfig loads the AIRBIN generator's own settings — the
// defaults a build pipeline wants pinned down independent of any one
// device description — from a TOML file.
package genconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds generator-level defaults. These are settings about how
// the generator runs, not about the device being configured.
type Config struct {
	Generate struct {
		// ArrayOffset is used for every tile address when the IR does
		// not specify one (spec §3's TileAddress.array_offset).
		ArrayOffset uint64 `toml:"array_offset"`
		// OutputPath is the default AIRBIN destination when the CLI
		// caller does not pass --out.
		OutputPath string `toml:"output_path"`
	} `toml:"generate"`

	Logging struct {
		Verbose bool `toml:"verbose"`
	} `toml:"logging"`
}

// Default returns a Config with the generator's built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Generate.ArrayOffset = 0
	cfg.Generate.OutputPath = "out.airbin"
	cfg.Logging.Verbose = false
	return cfg
}

// LoadFrom reads and decodes a TOML config file. A missing file is not
// an error — it returns the built-in defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("genconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}
