// Package main is the entry point for the jumble CLI.
package main

import "github.com/pragmatics/jumble/cmd"

func main() {
	cmd.Execute()
}
