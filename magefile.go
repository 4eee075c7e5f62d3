//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build builds the sentencecraft binary
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", "sentencecraft", "./cmd/sentencecraft")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs sentencecraft to GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/sentencecraft")
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm("sentencecraft")
}
