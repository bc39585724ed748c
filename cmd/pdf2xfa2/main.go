package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/spf13/afero"

	"github.com/a3tai/pdf2xfa2/internal/config"
	"github.com/a3tai/pdf2xfa2/internal/pdf"
	pdferrors "github.com/a3tai/pdf2xfa2/internal/pdf/errors"
	"github.com/a3tai/pdf2xfa2/internal/pdf/paths"
)

const programName = "pdf2xfa2"

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging sends diagnostics to stderr; stdout carries only usage and version text
func setupLogging(cfg *config.Config, stderr io.Writer) {
	log.SetOutput(stderr)
	log.SetPrefix(programName + ": ")
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(0)
	}
}

func main() {
	os.Exit(run(os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

// run executes one conversion and returns the process exit status
func run(args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	cfg, positional, err := config.LoadFromArgs(config.ModeCLI, programName, args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			printHelp(stdout)
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return pdferrors.ErrorTypeUsage.ExitCode()
	}

	if cfg.ShowVersion {
		printVersion(stdout)
		return 0
	}

	pair, err := paths.Resolve(positional)
	if err != nil {
		printUsage(stdout)
		return pdferrors.ErrorTypeUsage.ExitCode()
	}

	setupLogging(cfg, stderr)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	service, err := pdf.NewService(fs, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return 1
	}

	if cfg.IsDebug() {
		logInspection(service, pair.Source)
	}

	result, err := service.ExtractXFA(pdf.ExtractXFARequest{
		Source:      pair.Source,
		Destination: pair.Destination,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", programName, err)
		return pdferrors.TypeOf(err).ExitCode()
	}

	if cfg.IsVerbose() {
		log.Printf("Converted %s to %s", result.Source, result.Destination)
	}

	return 0
}

// logInspection logs the form structure of the source before converting it
func logInspection(service *pdf.Service, source string) {
	info, err := service.InspectXFA(pdf.InspectXFARequest{Path: source})
	if err != nil {
		log.Printf("Inspection failed: %v", err)
		return
	}

	log.Printf("Source %s: %d bytes, %d pages, AcroForm: %t, XFA: %t",
		info.Path, info.Size, info.Pages, info.HasAcroForm, info.HasXFA)
	for _, p := range info.Packets {
		log.Printf("  packet %s (%d bytes)", p.Name, p.Size)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s <pdf> [<xfa>]\n", programName)
}

func printHelp(w io.Writer) {
	printUsage(w)
	fmt.Fprintf(w, "\nExtracts the XFA form of <pdf> and writes it as indented UTF-8 XML to <xfa>.\n")
	fmt.Fprintf(w, "<pdf> defaults to the %s extension, <xfa> to <pdf> with the %s extension.\n",
		paths.DefaultSourceExt, paths.DefaultDestinationExt)
	fmt.Fprintf(w, "\nFlags:\n%s", config.FlagUsages(config.ModeCLI, programName))
	fmt.Fprintf(w, "\nEvery flag can also be set through the environment, e.g. %s_INDENT=2.\n", config.EnvPrefix)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pdf2xfa2\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
