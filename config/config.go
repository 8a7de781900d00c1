// Package config loads the three tunables SPEC_FULL.md carves out of
// the otherwise-fixed wire format: the PNG decode pixel ceiling, the
// scrypt memory budget, and the default bits_per_channel. A config file,
// when one is given, overrides the package's built-in defaults; there
// are no command-line flags or environment variables for these values.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/vilshansen/ecap-go/constants"
)

// Tunables is the resolved set of values the CLI feeds into ecap.Option.
type Tunables struct {
	MaxPixels      int
	ScryptBudget   uint64
	BitsPerChannel int
}

func defaults() Tunables {
	return Tunables{
		MaxPixels:      constants.DefaultMaxPixels,
		ScryptBudget:   constants.ScryptMemoryBudget,
		BitsPerChannel: constants.BitsPerChannelDefault,
	}
}

// Load reads configPath (if non-empty) as a viper config file — any
// format viper supports by extension (YAML, TOML, JSON) — and overlays
// it onto the package defaults. An empty configPath is not an error;
// a path to a missing, unreadable or malformed file is.
func Load(configPath string) (Tunables, error) {
	t := defaults()

	if configPath == "" {
		return t, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetDefault("max_pixels", t.MaxPixels)
	v.SetDefault("scrypt_budget", t.ScryptBudget)
	v.SetDefault("bits_per_channel", t.BitsPerChannel)

	if err := v.ReadInConfig(); err != nil {
		return t, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	t.MaxPixels = v.GetInt("max_pixels")
	t.ScryptBudget = uint64(v.GetInt64("scrypt_budget"))
	t.BitsPerChannel = v.GetInt("bits_per_channel")
	return t, nil
}
