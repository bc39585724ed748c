package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/spf13/afero"

	"github.com/a3tai/pdf2xfa2/internal/config"
	"github.com/a3tai/pdf2xfa2/internal/mcp"
	"github.com/a3tai/pdf2xfa2/internal/pdf"
)

const programName = "xfa-mcp-server"

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging keeps stdout free for the MCP protocol
func setupLogging(cfg *config.Config, stderr io.Writer) {
	if cfg.IsDebug() {
		log.SetOutput(stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		return
	}
	log.SetOutput(io.Discard)
}

func main() {
	cfg, _, err := config.LoadFromArgs(config.ModeStdio, programName, os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			fmt.Printf("Usage:\n  %s [flags]\n\nFlags:\n%s", programName, config.FlagUsages(config.ModeStdio, programName))
			return
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion(os.Stdout)
		return
	}

	setupLogging(cfg, os.Stderr)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	pdfService, err := pdf.NewService(afero.NewOsFs(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to create PDF service: %v\n", programName, err)
		os.Exit(1)
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: failed to create MCP server: %v\n", programName, err)
		os.Exit(1)
	}

	// The parent process controls our lifecycle; Run returns once stdin closes.
	if err := server.Run(context.Background()); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "XFA MCP Server\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
