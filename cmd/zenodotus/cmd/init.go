// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/zenodotus/pkg/vault"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new vault",
	Long: `Create a new vault in an existing, empty directory.

The directory defaults to the vault set with --vault, or to the current directory.
The digest scheme of the vault is chosen at creation time, and cannot be changed afterwards.`,
	Example: `% mkdir /data/vault && zenodotus init /data/vault --digest sha256`,
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if len(args) > 0 {
			zenodotusFlags.root.vault = args[0]
		}
		cfg := zenodotusFlags.vaultConfig()

		if err := vault.Initialize(ctx, cfg, vault.Logger(logger)); err != nil {
			wrapFatalln("failed to initialize vault", err)
			return
		}
		infoLogger.Printf("initialized vault in %s", cfg.Root)
	},
}

func init() {
	addDigestFlag(initCmd)
	rootCmd.AddCommand(initCmd)
}
