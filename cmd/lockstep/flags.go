package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateRunOptions(opts runOptions) error {
	if strings.TrimSpace(opts.ProfilePath) == "" {
		return fmt.Errorf("profile file is required")
	}

	abs, err := filepath.Abs(opts.ProfilePath)
	if err != nil {
		return fmt.Errorf("resolve profile path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("profile file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("profile path %s is a directory", abs)
	}

	return nil
}
