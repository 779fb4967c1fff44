//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Vets the module and builds the halfblock binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/halfblock", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests with the race detector on.
func (Build) Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}
