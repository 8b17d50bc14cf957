package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"dxf/cli"
	"dxf/entity"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <files...>",
	Short: "Decodes files and summarizes their entities.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := batchOptions(cmd)
		if err != nil {
			return err
		}
		results, err := cli.DecodeFiles(context.Background(), args, opts)
		if err != nil {
			return err
		}
		defer func() {
			for _, res := range results {
				res.Free()
			}
		}()

		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		switch format {
		case "json":
			return inspectJSON(results)
		case "text":
			inspectTable(results)
		default:
			return errors.Errorf("invalid output format %q", format)
		}

		var failed int
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return errors.Errorf("%d of %d files failed to decode", failed, len(results))
		}
		return nil
	},
}

type inspectRow struct {
	File     string `json:"file"`
	Type     string `json:"type,omitempty"`
	Handle   string `json:"handle,omitempty"`
	Layer    string `json:"layer,omitempty"`
	Children int    `json:"children"`
	Warnings int    `json:"warnings"`
	Error    string `json:"error,omitempty"`
}

func inspectRows(res *cli.FileResult) []inspectRow {
	if res.Err != nil {
		return []inspectRow{{
			File:     res.Path,
			Warnings: len(res.Diagnostics),
			Error:    res.Err.Error(),
		}}
	}

	rows := make([]inspectRow, 0, len(res.Records))
	for i, rec := range res.Records {
		row := inspectRow{
			File:     res.Path,
			Type:     rec.Type(),
			Layer:    entity.Layer(rec),
			Children: entity.Children(rec),
			Warnings: res.Warnings[i],
		}
		if rec.ID().Valid() {
			row.Handle = rec.ID().String()
		}
		rows = append(rows, row)
	}
	return rows
}

func inspectTable(results []*cli.FileResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"File",
		"Type",
		"Handle",
		"Layer",
		"Children",
		"Warnings",
	})
	for _, res := range results {
		for _, row := range inspectRows(res) {
			typ := row.Type
			if row.Error != "" {
				typ = "error: " + row.Error
			}
			table.Append([]string{
				row.File,
				typ,
				row.Handle,
				row.Layer,
				strconv.Itoa(row.Children),
				strconv.Itoa(row.Warnings),
			})
		}
	}
	table.Render()
}

func inspectJSON(results []*cli.FileResult) error {
	encoder := json.NewEncoder(os.Stdout)
	for _, res := range results {
		for _, row := range inspectRows(res) {
			if err := encoder.Encode(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func batchOptions(cmd *cobra.Command) (cli.BatchOptions, error) {
	v, err := cfg.Codec.ParsedVersion()
	if err != nil {
		return cli.BatchOptions{}, err
	}
	workers := cfg.Batch.Workers
	if cmd.Flags().Changed(cli.FlagWorkers) {
		workers, _ = cmd.Flags().GetInt(cli.FlagWorkers)
	}
	return cli.BatchOptions{
		Workers: workers,
		Version: v,
		Reader:  cfg.Codec.ReaderConfig(),
	}, nil
}

func init() {
	inspectCmd.Flags().String(cli.FlagFormat, "text", "Output format: text or json")
	inspectCmd.Flags().Int(cli.FlagWorkers, 0, "Number of files decoded concurrently. Defaults to the configured value.")
	rootCmd.AddCommand(inspectCmd)
}
