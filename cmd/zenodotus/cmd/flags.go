// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"text/template"

	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/vault"
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		vault     string
		indexFile string
		logLevel  string
	}
	init struct {
		digest string
	}
	add struct {
		fileList string
	}
	core struct {
		Template string
	}
}

var zenodotusFlags = flagsT{}

func addVaultFlag(cmd *cobra.Command) string {
	v := "vault"
	cmd.PersistentFlags().StringVar(&zenodotusFlags.root.vault, v, "", `The root directory of the vault (defaults to ".")`)
	return v
}

func addIndexFileFlag(cmd *cobra.Command) string {
	file := "file"
	cmd.PersistentFlags().StringVar(&zenodotusFlags.root.indexFile, file, "",
		"The path to an index file, to work on an index located outside of the vault")
	return file
}

func addLogLevel(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&zenodotusFlags.root.logLevel, loglevel, "",
		`The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug (defaults to "info")`)
	return loglevel
}

func addDigestFlag(cmd *cobra.Command) string {
	d := "digest"
	cmd.Flags().StringVar(&zenodotusFlags.init.digest, d, "",
		fmt.Sprintf("The digest scheme of the new vault: %s or %s (defaults to %s)", digest.Blake2b, digest.SHA256, digest.Default))
	return d
}

func addFileListFlag(cmd *cobra.Command) string {
	fileList := "files"
	cmd.Flags().StringVar(&zenodotusFlags.add.fileList, fileList, "", "Text file containing list of files separated by newline.")
	return fileList
}

func addTemplateFlag(cmd *cobra.Command) string {
	c := "format"
	cmd.Flags().StringVar(&zenodotusFlags.core.Template, c, "", `Pretty-print entries using a Go template. Use '{{ printf "%#v" . }}' to explore available fields`)
	return c
}

// vaultConfig yields the configuration of the vault to operate on
func (f flagsT) vaultConfig() vault.Config {
	root := f.root.vault
	if root == "" {
		root = "."
	}
	return vault.Config{
		Root:      root,
		IndexFile: f.root.indexFile,
		Digest:    f.init.digest,
	}
}

// userTemplate parses the template set with --format, if any
func (f flagsT) userTemplate(name string) (*template.Template, error) {
	if f.core.Template == "" {
		return nil, nil
	}
	return template.New(name).Parse(f.core.Template)
}
