// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/zenodotus/pkg/vault"
)

// openVault opens the vault designated by flags and configuration
func openVault(ctx context.Context) (*vault.Vault, error) {
	return vault.Open(ctx, zenodotusFlags.vaultConfig(), vault.Logger(logger))
}

func closeVault(v *vault.Vault) {
	if err := v.Close(); err != nil {
		wrapFatalln("failed to close vault", err)
	}
}
