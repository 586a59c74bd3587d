// Package main is the single-binary entrypoint for Lectern.
// One binary: the tracking daemon plus inspection commands.
package main

import "github.com/lectern-app/lectern/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
