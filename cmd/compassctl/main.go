// Package main provides compassctl, a command line client that edits charts
// directly in the configured store.
package main

import (
	"os"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).execute(nil); err != nil {
		os.Exit(1)
	}
}
