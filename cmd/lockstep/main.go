package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexisbeaulieu97/lockstep/internal/logger"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
)

func main() {
	log, err := logger.New(logger.Options{Level: "info", HumanReadable: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(exitInternal)
	}

	registry := subsystem.NewRegistry(log)
	if err := registerSubsystems(registry); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register subsystems: %v\n", err)
		os.Exit(exitInternal)
	}

	setAppRegistry(registry)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		os.Exit(exitConfig)
	}
}
