//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the scene in this terminal. HALFBLOCK_CONFIG picks a config file.
func (Run) Engine() error {
	mg.Deps(Build.Binary)
	args := []string{}
	if path := os.Getenv("HALFBLOCK_CONFIG"); path != "" {
		args = append(args, "-config", path)
	}
	fmt.Println("Run engine...")
	if _, err := executeCmd("bin/halfblock", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders 600 frames offscreen and prints the frame rate.
func (Run) Bench() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd("bin/halfblock", withArgs("-bench", "600"), withStream())
	return err
}
