package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/halfblock/engine/core"
)

// Config files beyond this size are refused.
const maxConfigSize = 1024 * 1024

// LoadConfig reads a .toml, .yaml or .yml file over the defaults and
// validates the result. Keys missing from the file keep their default.
func LoadConfig(path string) (*ApplicationConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config %s is %d bytes, limit is %d: %w", path, info.Size(), maxConfigSize, core.ErrInvalidConfig)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	core.LogDebug("loaded config %s (%d bytes)", path, info.Size())
	return config, nil
}

// ParseConfig decodes data in the format named by ext (".toml", ".yaml"
// or ".yml") over the defaults and validates the result.
func ParseConfig(data []byte, ext string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%v: %w", err, core.ErrInvalidConfig)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%v: %w", err, core.ErrInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml): %w", ext, core.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
