package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/binary"
)

// runCheck handles `sfdxinstall check`.
// Returns an exit code (0 = usable, 1 = missing or invalid) and an error
func runCheck(args []string, stdout io.Writer) (int, error) {
	cfg, logger, err := setup("check", args)
	if err != nil {
		return 1, err
	}

	resolver, err := binary.NewResolver(cfg, binary.Options{Logger: logger})
	if err != nil {
		return 1, fmt.Errorf("create resolver: %w", err)
	}

	path, ok := resolver.Check(context.Background())
	if !ok {
		fmt.Fprintf(stdout, "no usable sfdx %s for %s\n", cfg.Version, resolver.Platform())
		return 1, nil
	}

	fmt.Fprintln(stdout, path)
	return 0, nil
}

// runWhich handles `sfdxinstall which`: it prints the recorded path without
// validating it.
func runWhich(args []string, stdout io.Writer) error {
	cfg, _, err := setup("which", args)
	if err != nil {
		return err
	}

	rec, err := binary.ReadLocationRecord(cfg.RecordPath())
	if err != nil {
		if errors.Is(err, binary.ErrNotFound) {
			return fmt.Errorf("no sfdx recorded in %s\nRun 'sfdxinstall install' first", cfg.InstallDir)
		}
		return err
	}

	fmt.Fprintln(stdout, rec.Path)
	return nil
}
