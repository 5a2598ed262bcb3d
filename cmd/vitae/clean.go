package main

import (
	"fmt"

	vitae "github.com/alnah/go-vitae"
)

// runClean removes the output directory.
func runClean(args []string, deps *Dependencies) error {
	flags, err := parseCleanFlags(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadFlags, err)
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	outDir := cfg.Output.Dir
	if flags.out != "" {
		outDir = flags.out
	}

	if err := vitae.Clean(outDir); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "removed %s\n", outDir)
	return nil
}
