// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// Build information, injected with -ldflags "-X"
var (
	Version   string
	BuildDate string
	GitCommit string
	GitState  string
)

// VersionInfo describes the build of this binary
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	BuildDate string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
	GitCommit string `json:"gitCommit,omitempty" yaml:"gitCommit,omitempty"`
	GitState  string `json:"gitState,omitempty" yaml:"gitState,omitempty"`
}

// NewVersionInfo yields the build information of this binary. Unreleased builds report "dev".
func NewVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GitState:  GitState,
	}
	if info.Version == "" {
		info.Version = "dev"
	} else if info.GitState == "" {
		info.GitState = "clean"
	}
	return info
}

// String is a one-line summary
func (v VersionInfo) String() string {
	details := make([]string, 0, 3)
	if v.GitCommit != "" {
		details = append(details, "commit "+v.GitCommit)
	}
	if v.GitState != "" {
		details = append(details, v.GitState)
	}
	if v.BuildDate != "" {
		details = append(details, "built "+v.BuildDate)
	}
	if len(details) == 0 {
		return "zenodotus " + v.Version
	}
	return fmt.Sprintf("zenodotus %s (%s)", v.Version, strings.Join(details, ", "))
}

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of zenodotus",
	Long: `Print the version of zenodotus and where the binary comes from.

Release builds carry their tag as version. Builds from a working copy report "dev",
and tell whether the working copy had uncommitted changes ("dirty").
Use --verbose to get all build details as YAML.`,
	Example: `% zenodotus version
zenodotus v0.3.1 (commit 4f0c2e1, clean, built 2019-05-02T10:11:12Z)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := NewVersionInfo()
		if !versionVerbose {
			infoLogger.Println(info.String())
			return
		}
		b, err := yaml.Marshal(info)
		if err != nil {
			wrapFatalln("failed to marshal version", err)
			return
		}
		infoLogger.Print(string(b))
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "Print all build details")
	rootCmd.AddCommand(versionCmd)
}
