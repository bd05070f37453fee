//go:build mage

// Package main contains Mage build targets for chapter-images developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/chapter-images/internal/convert"
)

// projectDirs lists the working directories a fetch run writes to.
var projectDirs = []string{
	"svgs",
	"pngs",
}

const (
	binDir  = "bin"
	binName = "chapter-images"
	cmdPkg  = "./cmd/chapter-images"

	imageContext = "build/rsvg"
)

// Init creates the output directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Image builds the rsvg-convert image used by the container backend.
// Set CONTAINER_RUNTIME=podman to build with podman.
func Image() error {
	runtime := os.Getenv("CONTAINER_RUNTIME")
	if runtime == "" {
		runtime = "docker"
	}
	if err := sh.RunV(runtime, "build", "-t", convert.DefaultImage, imageContext); err != nil {
		return fmt.Errorf("%s build: %w", runtime, err)
	}
	fmt.Printf("Built image %s\n", convert.DefaultImage)
	return nil
}

// Fetch builds the CLI and downloads and converts every chapter image.
func Fetch() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "fetch")
}

// Clean removes the built binary and the downloaded images.
func Clean() error {
	for _, dir := range append([]string{binDir}, projectDirs...) {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}
