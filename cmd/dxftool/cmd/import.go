package cmd

import (
	"context"
	"fmt"

	"dxf/cli"
	"dxf/config"
	"dxf/store"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/syndtr/goleveldb/leveldb"
)

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Decodes files and saves their entities to the entity store.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir := cli.GetHomeDir(cmd)
		if err := config.EnsureHomeDir(homeDir); err != nil {
			return err
		}
		opts, err := batchOptions(cmd)
		if err != nil {
			return err
		}
		wopts, err := cfg.Codec.WriterOptions()
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
		for _, res := range results {
			if res.Err != nil {
				return errors.Wrapf(res.Err, "error decoding %s", res.Path)
			}
		}

		db, err := store.Open(config.ExpandDBPath(homeDir))
		if err != nil {
			return err
		}
		defer db.Close()

		var imported, skipped int
		err = store.WithTx(db, func(tx *leveldb.Transaction) error {
			for _, res := range results {
				for _, rec := range res.Records {
					_, err := store.PutRecordTx(tx, rec, wopts)
					if errors.Cause(err) == store.ErrNoHandle {
						skipped++
						continue
					}
					if err != nil {
						return errors.Wrapf(err, "error importing %s %s", res.Path, rec.Type())
					}
					imported++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		count, err := store.GetEntityCount(db)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d entities, skipped %d without a handle. The store holds %d entities.\n", imported, skipped, count)
		return nil
	},
}

func init() {
	importCmd.Flags().Int(cli.FlagWorkers, 0, "Number of files decoded concurrently. Defaults to the configured value.")
	rootCmd.AddCommand(importCmd)
}
