package cmd

import (
	"fmt"
	"os"

	"dxf/cli"
	"dxf/config"
	"dxf/log"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	lgr = log.WithModule("dxftool")
)

var rootCmd = &cobra.Command{
	Use:           "dxftool",
	Short:         "Decodes, inspects and converts DXF entity streams.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.CalledAs() == "init" || cmd.CalledAs() == "version" {
			return nil
		}
		loaded, err := cli.LoadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(cli.FlagHome, "~/.dxftool", "Home directory for dxftool's configuration and entity store.")
}
