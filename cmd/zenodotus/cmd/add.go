// Copyright © 2018 One Concern

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/oneconcern/zenodotus/pkg/vault"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var addCmd = &cobra.Command{
	Use:   "add <file> [logical-name]",
	Short: "Add files to the vault",
	Long: `Add files to the vault.

Added files are moved into the storage area of the vault, under the name of their digest.
The logical name of an entry defaults to the base name of the file.

Neither the content nor the logical name of an added file may already be present in the vault.

With --files, every line of the list is a file to add under its base name. A failure on one
file does not prevent the others from being added.`,
	Example: `% zenodotus add ./report-2019.txt report.txt
% zenodotus add --files ./to-archive.txt`,
	Args: func(cmd *cobra.Command, args []string) error {
		if zenodotusFlags.add.fileList != "" {
			if len(args) > 0 {
				return fmt.Errorf("no argument expected with --files")
			}
			return nil
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		sources, err := addSources(args)
		if err != nil {
			wrapFatalln("failed to read file list", err)
			return
		}

		v, err := openVault(ctx)
		if err != nil {
			wrapFatalln("failed to open vault", err)
			return
		}
		receipts, err := v.IngestAll(ctx, sources)
		closeVault(v)

		for _, r := range receipts {
			if r.Stage == vault.StageDone {
				infoLogger.Printf("%s %s", r.Entry.Digest, r.Entry.Name)
			}
		}
		if err != nil {
			errs := multierr.Errors(err)
			for _, e := range errs[:len(errs)-1] {
				log.Println(e)
			}
			wrapFatalln(fmt.Sprintf("failed to add %d file(s) out of %d", len(errs), len(sources)), errs[len(errs)-1])
			return
		}
	},
}

func addSources(args []string) ([]vault.Source, error) {
	if zenodotusFlags.add.fileList == "" {
		src := vault.Source{Path: args[0]}
		if len(args) > 1 {
			src.Name = args[1]
		}
		return []vault.Source{src}, nil
	}

	file, err := os.Open(zenodotusFlags.add.fileList)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %s: %w", zenodotusFlags.add.fileList, err)
	}
	defer file.Close()

	lineScanner := bufio.NewScanner(file)
	sources := make([]vault.Source, 0)
	for lineScanner.Scan() {
		line := strings.TrimSpace(lineScanner.Text())
		if line == "" {
			continue
		}
		sources = append(sources, vault.Source{Path: line})
	}
	return sources, lineScanner.Err()
}

func init() {
	addFileListFlag(addCmd)
	rootCmd.AddCommand(addCmd)
}
