package config

import (
	"flag"
	"fmt"
	"os"
)

// MergeFromFlags parses command-line flags and overrides config values
func (c *Config) MergeFromFlags() error {
	// Define flags
	fs := flag.NewFlagSet("encodemgr", flag.ContinueOnError)
	fs.Usage = printUsage

	// Config file override (handled by LoadConfig before this function is called)
	_ = fs.String("config", "", "Path to config file (default: search standard locations)")

	concurrent := fs.Int("concurrent", -1, "Maximum concurrent encode processes (default: from config)")
	ffmpeg := fs.String("ffmpeg", "", "Path to the ffmpeg binary (default: from config)")
	recordedDB := fs.String("recorded-db", "", "DSN for the recording metadata store (default: from config)")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	dryRun := fs.Bool("dry-run", false, "Show effective configuration without starting the manager")

	// Parse flags
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	// Note: Config file loading is handled by LoadConfig() before this function
	// is called. The -config flag is only used to specify which file to load.

	if *concurrent >= 0 {
		c.ConcurrentEncodeNum = *concurrent
	}
	if *ffmpeg != "" {
		c.FFmpeg = *ffmpeg
	}
	if *recordedDB != "" {
		c.RecordedDB = *recordedDB
	}
	if *verbose {
		c.Verbose = true
	}
	if *dryRun {
		c.DryRun = true
	}

	return nil
}

// printUsage prints help text
func printUsage() {
	fmt.Fprintf(os.Stderr, `encodemgr - priority-queued video re-encode job manager

USAGE:
  encodemgr [OPTIONS]

CONFIGURATION:
  -config string
        Path to config file (default: search ./encodemgr.yaml, ~/.encodemgr/config.yaml, /etc/encodemgr/config.yaml)
  -concurrent int
        Maximum concurrent encode processes (default: from config)
  -ffmpeg string
        Path to the ffmpeg binary (default: from config)
  -recorded-db string
        DSN for the recording metadata store (default: from config)
  -verbose
        Enable verbose logging
  -dry-run
        Show effective configuration without starting the manager

EXAMPLES:
  # Basic usage (uses defaults from config file)
  encodemgr

  # Cap concurrency at 4 and point at a custom ffmpeg build
  encodemgr -concurrent 4 -ffmpeg /opt/ffmpeg/bin/ffmpeg

  # Show effective configuration without starting the manager
  encodemgr --dry-run

  # Use custom config file
  encodemgr -config custom.yaml

CONFIGURATION FILES:
  Config files are searched in order:
    1. ./encodemgr.yaml
    2. ~/.encodemgr/config.yaml
    3. /etc/encodemgr/config.yaml

  Priority: CLI flags > Config file > Defaults

`)
}

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig() {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                 Effective Configuration                  ")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("ConcurrentEncodeNum: %d\n", c.ConcurrentEncodeNum)
	fmt.Printf("FFmpeg:              %s\n", c.FFmpeg)
	fmt.Printf("RecordedDB:          %s\n", c.RecordedDB)

	fmt.Println("\nEncode Profiles:")
	for _, p := range c.Encode {
		fmt.Printf("  - %s: suffix=%q rate=%.2f\n", p.Name, p.Suffix, p.EffectiveRate())
		fmt.Printf("      cmd: %s\n", p.Cmd)
	}

	fmt.Println("\nParent Directories:")
	for name, path := range c.ParentDirs {
		fmt.Printf("  - %s -> %s\n", name, path)
	}

	fmt.Println("\nBehavioral Flags:")
	fmt.Printf("  Verbose:       %v\n", c.Verbose)
	fmt.Printf("  Dry Run:       %v\n", c.DryRun)
	fmt.Println("═══════════════════════════════════════════════════════════")
}
