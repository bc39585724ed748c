package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeCLI   = "cli"
	ModeStdio = "stdio"

	// EnvPrefix is the prefix of environment variables, e.g. PDF2XFA_INDENT
	EnvPrefix = "PDF2XFA"

	// Default values
	DefaultLogLevel    = "warn"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultIndent      = 4
	MaxIndent          = 16
)

// Flag and environment keys
const (
	keyLogLevel    = "loglevel"
	keyMaxFileSize = "maxfilesize"
	keyIndent      = "indent"
	keyPacket      = "packet"
	keyPassword    = "password"
	keyDir         = "dir"
)

// ErrHelp is returned when -h or --help was given
var ErrHelp = pflag.ErrHelp

// Config holds all configuration for a conversion run or the MCP server
type Config struct {
	Mode string // "cli" or "stdio"

	// Conversion configuration
	MaxFileSize int64  // Maximum PDF file size in bytes
	Indent      int    // Spaces per nesting level, 0 keeps the document's whitespace
	Packet      string // Single XFA packet to export, empty for the whole package
	Password    string // User or owner password of encrypted documents

	// MCP server configuration
	PDFDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	ShowVersion bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig(mode string) *Config {
	cfg := &Config{
		Mode:        mode,
		MaxFileSize: DefaultMaxFileSize,
		Indent:      DefaultIndent,
		Version:     "1.0.0",
		ServerName:  "pdf2xfa2",
		LogLevel:    DefaultLogLevel,
	}

	if mode == ModeStdio {
		currentDir, err := os.Getwd()
		if err != nil {
			// Fallback to current directory if working directory cannot be determined
			currentDir = "."
		}
		cfg.PDFDirectory = currentDir
		cfg.ServerName = "xfa-mcp-server"
	}

	return cfg
}

// LoadFromArgs parses flags and PDF2XFA_* environment variables for the given
// mode and returns the configuration together with the positional arguments.
// Flags take precedence over the environment, which takes precedence over defaults.
func LoadFromArgs(mode, name string, args []string) (*Config, []string, error) {
	if mode != ModeCLI && mode != ModeStdio {
		return nil, nil, fmt.Errorf("unknown mode %q", mode)
	}

	cfg := DefaultConfig(mode)
	flags := newFlagSet(mode, name, cfg)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil, ErrHelp
		}
		return nil, nil, fmt.Errorf("invalid arguments: %w", err)
	}

	v := newViper(cfg, flags)
	if err := populateConfigFromViper(v, cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.ShowVersion, _ = flags.GetBool("version")

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, flags.Args(), nil
}

// FlagUsages returns the flag defaults of a mode formatted for a help message
func FlagUsages(mode, name string) string {
	return newFlagSet(mode, name, DefaultConfig(mode)).FlagUsages()
}

// newFlagSet defines the command line flags of a mode
func newFlagSet(mode, name string, cfg *Config) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}
	// Flags after the first positional argument are still parsed.
	flags.SetInterspersed(true)

	flags.String(keyLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64(keyMaxFileSize, cfg.MaxFileSize, "Maximum PDF file size in bytes")
	flags.Int(keyIndent, cfg.Indent, "Spaces per indentation level, 0 keeps the embedded whitespace")
	flags.String(keyPacket, cfg.Packet, "Export a single XFA packet (e.g. template, datasets) instead of the whole package")
	flags.String(keyPassword, cfg.Password, "Password of an encrypted PDF")
	flags.BoolP("version", "v", false, "Print version information and exit")

	if mode == ModeStdio {
		flags.String(keyDir, cfg.PDFDirectory, "Directory the MCP tools may read from and write to")
	}

	return flags
}

// newViper layers flags over environment variables over defaults
func newViper(cfg *Config, flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(keyLogLevel, cfg.LogLevel)
	v.SetDefault(keyMaxFileSize, cfg.MaxFileSize)
	v.SetDefault(keyIndent, cfg.Indent)
	v.SetDefault(keyPacket, cfg.Packet)
	v.SetDefault(keyPassword, cfg.Password)

	for _, key := range []string{keyLogLevel, keyMaxFileSize, keyIndent, keyPacket, keyPassword} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	if cfg.Mode == ModeStdio {
		v.SetDefault(keyDir, cfg.PDFDirectory)
		_ = v.BindPFlag(keyDir, flags.Lookup(keyDir))
	}

	return v
}

// populateConfigFromViper fills the config struct with values from viper.
// Numeric settings that do not parse are rejected instead of read as zero.
func populateConfigFromViper(v *viper.Viper, cfg *Config) error {
	cfg.LogLevel = strings.ToLower(v.GetString(keyLogLevel))

	maxFileSize, err := cast.ToInt64E(v.Get(keyMaxFileSize))
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", keyMaxFileSize, err)
	}
	cfg.MaxFileSize = maxFileSize

	indent, err := cast.ToIntE(v.Get(keyIndent))
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", keyIndent, err)
	}
	cfg.Indent = indent

	cfg.Packet = v.GetString(keyPacket)
	cfg.Password = v.GetString(keyPassword)

	if cfg.Mode == ModeStdio {
		cfg.PDFDirectory = v.GetString(keyDir)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio {
		return errors.New("mode must be either 'cli' or 'stdio'")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Indent < 0 || c.Indent > MaxIndent {
		return fmt.Errorf("indent must be between 0 and %d", MaxIndent)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.Mode == ModeStdio {
		if c.PDFDirectory == "" {
			return errors.New("PDF directory cannot be empty")
		}
		info, err := os.Stat(c.PDFDirectory)
		if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
		}
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsVerbose returns true if informational logging is enabled
func (c *Config) IsVerbose() bool {
	return c.LogLevel == "debug" || c.LogLevel == "info"
}

// IsStdioMode returns true when running as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	password := ""
	if c.Password != "" {
		password = "****"
	}
	return fmt.Sprintf("Config{Mode: %s, MaxFileSize: %d, Indent: %d, Packet: %q, Password: %q, PDFDirectory: %s, LogLevel: %s}",
		c.Mode, c.MaxFileSize, c.Indent, c.Packet, password, c.PDFDirectory, c.LogLevel)
}
