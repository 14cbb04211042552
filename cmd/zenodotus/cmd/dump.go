// Copyright © 2018 One Concern

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"
	"github.com/oneconcern/zenodotus/pkg/index"
	"github.com/spf13/cobra"
)

func formatEntry(et index.EntryTags) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", color.YellowString(et.Digest), et.Name)
	for _, tag := range et.Tags {
		fmt.Fprintf(&b, "\n\t%s", color.HiBlackString(tag.String()))
	}
	return b.String()
}

func applyEntryTemplate(tmpl *template.Template) func(index.EntryTags) error {
	return func(et index.EntryTags) error {
		if tmpl == nil {
			infoLogger.Println(formatEntry(et))
			return nil
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, et); err != nil {
			return fmt.Errorf("executing template: %w", err)
		}
		infoLogger.Println(buf.String())
		return nil
	}
}

var dumpCmd = &cobra.Command{
	Use:   "dump [prefix]",
	Short: "List the entries of the vault and their tags",
	Long: `List the entries of the vault, ordered by digest, together with their tags.

When a digest prefix is given, only the entries with a digest starting with this prefix are listed.`,
	Example: `% zenodotus dump 3f
3f2a9c...e71b report.txt
	year=2019
% zenodotus dump --format '{{ .Name }}'
report.txt`,
	Aliases: []string{"list", "ls"},
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}

		tmpl, err := zenodotusFlags.userTemplate("entry")
		if err != nil {
			wrapFatalln("invalid template", err)
			return
		}

		v, err := openVault(ctx)
		if err != nil {
			wrapFatalln("failed to open vault", err)
			return
		}
		err = v.ListApply(ctx, prefix, applyEntryTemplate(tmpl))
		closeVault(v)
		if err != nil {
			wrapFatalln("failed to list entries", err)
			return
		}
	},
}

func init() {
	addTemplateFlag(dumpCmd)
	rootCmd.AddCommand(dumpCmd)
}
