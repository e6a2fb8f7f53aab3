// Package main provides interpret-trailers, a reimplementation of
// git interpret-trailers on top of the trailers package.
package main

import (
	"fmt"
	"os"

	"github.com/gopasspw/trailers"
)

func main() {
	cmd := newRootCmd(loadSettings)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings reads the trailer settings of the repository in the
// current directory.
func loadSettings() (*trailers.Settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	return trailers.NewConfigs().LoadAll(wd).Settings()
}
