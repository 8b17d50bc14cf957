package cli

import (
	"dxf/config"
	"dxf/log"
	"dxf/record"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func GetHomeDir(cmd *cobra.Command) string {
	homeDirUnexp, err := cmd.Flags().GetString(FlagHome)
	if err != nil {
		panic(err)
	}
	homeDir := config.ExpandHomePath(homeDirUnexp)
	return homeDir
}

func InitHomeDir(cmd *cobra.Command) (string, error) {
	homeDir := GetHomeDir(cmd)
	exists, err := config.HomeDirExists(homeDir)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("home directory is already initialized")
	}
	if err := config.InitHomeDir(homeDir); err != nil {
		return "", err
	}
	return homeDir, nil
}

// LoadConfig reads the config file under the home directory, falling back
// to the defaults when the directory has not been initialized, and applies
// its logging and entity default settings.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	homeDir := GetHomeDir(cmd)
	exists, err := config.HomeDirExists(homeDir)
	if err != nil {
		return nil, err
	}

	def := config.DefaultConfig
	cfg := &def
	if exists {
		cfg, err = config.ReadConfigFile(homeDir)
		if err != nil {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}
	if err := ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ApplyConfig(cfg *config.Config) error {
	lvl, err := log.NewLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(lvl)
	if err := log.SetFormat(cfg.LogFormat); err != nil {
		return err
	}
	record.SetWarningRate(cfg.Codec.MaxWarningsPerSecond)

	err = config.InstallEntityDefaults(cfg.EntityDefaults.EntityDefaults())
	if err != nil && errors.Cause(err) != config.ErrDefaultsFrozen {
		return errors.Wrap(err, "invalid entity defaults")
	}
	return nil
}
