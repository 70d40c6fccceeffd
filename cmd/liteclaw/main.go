// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command liteclaw supervises the LiteClaw backend and serves the loopback
// control API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wingedpig/liteclaw/internal/app"
)

var (
	version = "0.1.0"
)

func main() {
	// Check for subcommands before flag parsing
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		configPath  string
		dataDir     string
		host        string
		port        int
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to settings file (default: liteclaw.hjson/.json/.yaml in the working directory)")
	flag.StringVar(&configPath, "c", "", "Path to settings file (short)")
	flag.StringVar(&dataDir, "data-dir", "", "Data directory (overrides settings)")
	flag.StringVar(&host, "host", "", "Control API host (overrides settings)")
	flag.IntVar(&port, "port", 0, "Control API port (overrides settings)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("liteclaw %s\n", version)
		os.Exit(0)
	}

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		DataDir:    dataDir,
		Host:       host,
		Port:       port,
		Version:    version,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("App error: %v", err)
	}
}
