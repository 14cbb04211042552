// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <digest-prefix> <name> [value]",
	Short: "Tag an entry of the vault",
	Long: `Tag an entry of the vault, with a name and an optional value.

The entry is designated by a prefix of its digest, which must match exactly one entry.
Tags accumulate: tagging an entry twice with the same name keeps both tags.`,
	Example: `% zenodotus tag 3f2a year 2019
3f2a9c...e71b`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var value *string
		if len(args) > 2 {
			value = &args[2]
		}

		v, err := openVault(ctx)
		if err != nil {
			wrapFatalln("failed to open vault", err)
			return
		}
		d, err := v.Tag(ctx, args[0], args[1], value)
		closeVault(v)
		if err != nil {
			wrapFatalln("failed to tag entry", err)
			return
		}
		infoLogger.Println(d)
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
}
