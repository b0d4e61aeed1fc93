package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/binary"
)

// runInstall handles `sfdxinstall install`: it reuses the recorded binary
// when valid, otherwise downloads and records a new one, and prints the
// binary path.
func runInstall(args []string, stdout io.Writer) error {
	cfg, logger, err := setup("install", args)
	if err != nil {
		return err
	}

	// Downloads are bounded by the HTTP client timeout per attempt
	ctx := context.Background()

	resolver, err := binary.NewResolver(cfg, binary.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("create resolver: %w", err)
	}

	result, err := resolver.Ensure(ctx)
	if err != nil {
		return err
	}

	if !result.Reused {
		logger.Info("sfdx installed",
			"version", result.Version,
			"verified", result.Verified.String(),
			"took", result.DownloadTime.Round(time.Millisecond))
	}

	fmt.Fprintln(stdout, result.Path)
	return nil
}
