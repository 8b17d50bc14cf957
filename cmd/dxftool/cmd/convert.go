package cmd

import (
	"fmt"
	"io"
	"os"

	"dxf/cli"
	"dxf/dwire"
	"dxf/entity"
	"dxf/version"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encodes the entities of a file at another version. Use - for stdin or stdout.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cfg.Codec.WriterOptions()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed(cli.FlagVersion) {
			to, _ := cmd.Flags().GetString(cli.FlagVersion)
			v, err := dwire.ParseVersion(to)
			if err != nil {
				return errors.Wrap(err, "invalid target version")
			}
			opts.Version = v
		}
		readVersion, err := cfg.Codec.ParsedVersion()
		if err != nil {
			return err
		}

		var rd io.Reader
		name := args[0]
		if name == "-" {
			if isatty.IsTerminal(os.Stdin.Fd()) {
				return errors.New("refusing to read entities from a terminal")
			}
			rd = os.Stdin
			name = "stdin"
		} else {
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()
			rd = f
		}

		doc, err := entity.DecodeDocument(dwire.NewConfiguredReader(rd, readVersion, name, cfg.Codec.ReaderConfig()))
		if err != nil {
			return errors.Wrapf(err, "error decoding %s", name)
		}
		defer doc.Free()
		for _, d := range doc.Diagnostics {
			fmt.Fprintln(os.Stderr, d.String())
		}

		var out io.Writer = os.Stdout
		if args[1] != "-" {
			f, err := os.OpenFile(args[1], os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		cw := cli.NewCountingWriter(out)
		w := dwire.NewNamedWriter(cw, opts, args[1])
		diags, err := entity.WriteDocument(w, doc.Records, fmt.Sprintf("converted from %s by %s", doc.Version, version.UserAgent))
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.String())
		}
		if err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		lgr.Info("converted", "in", name, "out", args[1], "records", len(doc.Records), "version", opts.Version, "bytes", cw.Count())
		return nil
	},
}

func init() {
	convertCmd.Flags().String(cli.FlagVersion, "", "Target version, e.g. R12 or R2000. Defaults to the configured version.")
	rootCmd.AddCommand(convertCmd)
}
