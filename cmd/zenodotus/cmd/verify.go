// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [prefix]",
	Short: "Check the files stored in the vault",
	Long: `Check that every entry of the vault has its file in the storage area,
and that the digest of this file matches the entry.

An entry without any file is left behind when a file could not be moved into the vault after it was indexed.
Files in the storage area that no entry claims are reported as well.
The command exits with status 1 when any problem is found.`,
	Example: `% zenodotus verify
3f2a9c...e71b report.txt: missing from storage`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}

		v, err := openVault(ctx)
		if err != nil {
			wrapFatalln("failed to open vault", err)
			return
		}
		findings, err := v.Verify(ctx, prefix)
		closeVault(v)
		if err != nil {
			wrapFatalln("failed to verify vault", err)
			return
		}
		for _, f := range findings {
			if f.Entry.Name == "" {
				infoLogger.Printf("%s: %s", f.Entry.Digest, color.RedString(string(f.Problem)))
				continue
			}
			infoLogger.Printf("%s %s: %s", f.Entry.Digest, f.Entry.Name, color.RedString(string(f.Problem)))
		}
		if len(findings) > 0 {
			wrapFatalWithCodef(1, "%d problem(s) found", len(findings))
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
