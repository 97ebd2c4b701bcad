//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
)

// Install installs the CLI binary into GOBIN.
func Install() error {
	cmd := exec.Command("go", "install", cmdPkg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go install: %w", err)
	}
	fmt.Println("Installed", binName)
	return nil
}
