//go:build mage

package main

import (
	"fmt"
	"os"
)

// cleanDirs lists the generated directories Clean removes. The snapshot
// cache and secrets survive a clean.
var cleanDirs = []string{
	"bin",
	"out",
}

// Clean removes build and export outputs.
func Clean() error {
	for _, dir := range cleanDirs {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		fmt.Println("removed", dir)
	}
	return nil
}
