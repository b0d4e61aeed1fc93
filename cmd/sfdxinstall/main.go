package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/binary"
	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/platform"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	args := os.Args[1:]

	// Bare flags mean install
	command := "install"
	if len(args) > 0 {
		switch {
		case args[0] == "--version", args[0] == "-h", args[0] == "--help":
			command, args = args[0], args[1:]
		case !strings.HasPrefix(args[0], "-"):
			command, args = args[0], args[1:]
		}
	}

	switch command {
	case "--version":
		fmt.Printf("sfdxinstall %s\n", Version)
		return
	case "install":
		if err := runInstall(args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, binary.ErrUnsupportedPlatform) {
				fmt.Fprintf(os.Stderr, "Set %s and %s to pick a supported release.\n", platform.EnvPlatform, platform.EnvArch)
			}
			if errors.Is(err, binary.ErrUnpinnedVersion) {
				fmt.Fprintf(os.Stderr, "This build can only verify sfdx %s.\n", binary.PinnedVersion)
			}
			os.Exit(1)
		}
		return
	case "check":
		code, err := runCheck(args, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	case "which":
		if err := runWhich(args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("sfdxinstall - locate or install the sfdx CLI for this platform")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sfdxinstall [install] [options]  Reuse the recorded sfdx or download it")
	fmt.Println("  sfdxinstall check [options]      Exit 0 if the recorded sfdx is usable")
	fmt.Println("  sfdxinstall which [options]      Print the recorded sfdx path")
	fmt.Println("  sfdxinstall --version            Show version information")
	fmt.Println()
	fmt.Println("Options:")
	fs := newFlagSet("sfdxinstall", &options{})
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
}
