// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/zenodotus/cmd/zenodotus/cmd"
)

func main() {
	cmd.Execute()
}
