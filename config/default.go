package config

import (
	"bytes"
	"io"
	"os"
	"path"
	"text/template"

	"dxf/log"

	"github.com/pkg/errors"
)

const ConfigFilename = "config.toml"

var DefaultConfig = Config{
	LogLevel:  log.LevelInfo.String(),
	LogFormat: "text",
	Codec: CodecConfig{
		Version:              "R2000",
		FloatPrecision:       6,
		Flatland:             false,
		MaxLineLen:           4096,
		MaxWarningsPerSecond: 20,
	},
	EntityDefaults: EntityDefaultsConfig{
		Layer:     "0",
		Linetype:  "BYLAYER",
		TextStyle: "STANDARD",
	},
	Batch: BatchConfig{
		Workers: 4,
	},
}

const defaultConfigTemplateText = `# dxftool Config File

# Sets the log level. Can be one of the following values:
# - error
# - warn
# - info
# - debug
# - trace
log_level = "{{.LogLevel}}"

# Sets the log format. Either "text" or "json".
log_format = "{{.LogFormat}}"

# Configures how drawings are read and written.
[codec]
  # Sets the DXF version assumed for input files without a $ACADVER
  # header and used when writing. Accepts R10 through R2018 or an
  # AC10xx version string.
  version = "{{.Codec.Version}}"
  # Sets the number of decimals written for floating point values.
  # Use -1 to write the shortest representation that reads back exactly.
  float_precision = {{.Codec.FloatPrecision}}
  # Writes the R11 elevation group on 2D entities.
  flatland = {{.Codec.Flatland}}
  # Sets the longest line accepted when reading. Longer lines abort
  # the file.
  max_line_len = {{.Codec.MaxLineLen}}
  # Sets how many decode warnings are logged per second. All warnings
  # are still reported by inspect.
  max_warnings_per_second = {{.Codec.MaxWarningsPerSecond}}

# Configures the values substituted for empty names.
[entity_defaults]
  layer = "{{.EntityDefaults.Layer}}"
  linetype = "{{.EntityDefaults.Linetype}}"
  text_style = "{{.EntityDefaults.TextStyle}}"

# Configures multi-file commands.
[batch]
  # Sets how many files are decoded concurrently.
  workers = {{.Batch.Workers}}
`

var defaultConfigTemplate *template.Template

func GenerateDefaultConfigFile() []byte {
	buf := new(bytes.Buffer)
	if err := defaultConfigTemplate.Execute(buf, DefaultConfig); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func ReadConfigFile(homeDir string) (*Config, error) {
	f, err := os.OpenFile(path.Join(homeDir, ConfigFilename), os.O_RDONLY, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file for reading")
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return cfg, nil
}

func WriteDefaultConfigFile(homeDir string) error {
	f, err := os.OpenFile(path.Join(homeDir, ConfigFilename), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "error opening config file for writing")
	}
	defer f.Close()
	rd := bytes.NewReader(GenerateDefaultConfigFile())
	if _, err := io.Copy(f, rd); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return nil
}

func init() {
	tmpl := template.New("defaultConfig")
	t, err := tmpl.Parse(defaultConfigTemplateText)
	if err != nil {
		panic(err)
	}
	defaultConfigTemplate = t
}
