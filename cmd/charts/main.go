// Package main is the entry point for the charts CLI binary.
package main

import (
	"os"

	"github.com/kmmelissat/analisis-al-instante-api/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
