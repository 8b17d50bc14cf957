package config

import (
	"io"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

type Config struct {
	LogLevel       string               `mapstructure:"log_level"`
	LogFormat      string               `mapstructure:"log_format"`
	Codec          CodecConfig          `mapstructure:"codec"`
	EntityDefaults EntityDefaultsConfig `mapstructure:"entity_defaults"`
	Batch          BatchConfig          `mapstructure:"batch"`
}

type CodecConfig struct {
	Version              string `mapstructure:"version"`
	FloatPrecision       int    `mapstructure:"float_precision"`
	Flatland             bool   `mapstructure:"flatland"`
	MaxLineLen           int    `mapstructure:"max_line_len"`
	MaxWarningsPerSecond int    `mapstructure:"max_warnings_per_second"`
}

type EntityDefaultsConfig struct {
	Layer     string `mapstructure:"layer"`
	Linetype  string `mapstructure:"linetype"`
	TextStyle string `mapstructure:"text_style"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	return config, nil
}
