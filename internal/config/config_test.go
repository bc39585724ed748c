package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromArgs_DefaultConfig(t *testing.T) {
	cfg, args, err := LoadFromArgs(ModeCLI, "pdf2xfa2", []string{"form.pdf"})
	require.NoError(t, err)

	assert.Equal(t, []string{"form.pdf"}, args)
	assert.Equal(t, ModeCLI, cfg.Mode)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, DefaultIndent, cfg.Indent)
	assert.Empty(t, cfg.Packet)
	assert.Empty(t, cfg.Password)
	assert.Empty(t, cfg.PDFDirectory)
	assert.False(t, cfg.ShowVersion)
	assert.False(t, cfg.IsDebug())
	assert.False(t, cfg.IsVerbose())
}

func TestLoadFromArgs_ValidFlags(t *testing.T) {
	tests := []struct {
		name            string
		args            []string
		wantArgs        []string
		wantLogLevel    string
		wantMaxFileSize int64
		wantIndent      int
		wantPacket      string
	}{
		{
			name:            "all flags before positionals",
			args:            []string{"--loglevel=debug", "--maxfilesize=2048", "--indent=2", "--packet=datasets", "in.pdf", "out.xml"},
			wantArgs:        []string{"in.pdf", "out.xml"},
			wantLogLevel:    "debug",
			wantMaxFileSize: 2048,
			wantIndent:      2,
			wantPacket:      "datasets",
		},
		{
			name:            "flags interspersed with positionals",
			args:            []string{"in.pdf", "--indent", "0", "out"},
			wantArgs:        []string{"in.pdf", "out"},
			wantLogLevel:    DefaultLogLevel,
			wantMaxFileSize: DefaultMaxFileSize,
			wantIndent:      0,
		},
		{
			name:            "log level is case insensitive",
			args:            []string{"--loglevel", "INFO"},
			wantArgs:        []string{},
			wantLogLevel:    "info",
			wantMaxFileSize: DefaultMaxFileSize,
			wantIndent:      DefaultIndent,
		},
		{
			name:            "double dash ends flags",
			args:            []string{"--", "--odd-name.pdf"},
			wantArgs:        []string{"--odd-name.pdf"},
			wantLogLevel:    DefaultLogLevel,
			wantMaxFileSize: DefaultMaxFileSize,
			wantIndent:      DefaultIndent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, args, err := LoadFromArgs(ModeCLI, "pdf2xfa2", tt.args)
			require.NoError(t, err)

			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantLogLevel, cfg.LogLevel)
			assert.Equal(t, tt.wantMaxFileSize, cfg.MaxFileSize)
			assert.Equal(t, tt.wantIndent, cfg.Indent)
			assert.Equal(t, tt.wantPacket, cfg.Packet)
		})
	}
}

func TestLoadFromArgs_Environment(t *testing.T) {
	t.Setenv("PDF2XFA_LOGLEVEL", "info")
	t.Setenv("PDF2XFA_INDENT", "8")
	t.Setenv("PDF2XFA_PACKET", "template")
	t.Setenv("PDF2XFA_PASSWORD", "secret")
	t.Setenv("PDF2XFA_MAXFILESIZE", "4096")

	cfg, _, err := LoadFromArgs(ModeCLI, "pdf2xfa2", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Indent)
	assert.Equal(t, "template", cfg.Packet)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, int64(4096), cfg.MaxFileSize)
	assert.True(t, cfg.IsVerbose())
}

func TestLoadFromArgs_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("PDF2XFA_INDENT", "8")

	cfg, _, err := LoadFromArgs(ModeCLI, "pdf2xfa2", []string{"--indent=3"})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Indent)
}

func TestLoadFromArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown flag",
			mode:    ModeCLI,
			args:    []string{"--bogus"},
			wantErr: "invalid arguments",
		},
		{
			name:    "invalid log level",
			mode:    ModeCLI,
			args:    []string{"--loglevel=verbose"},
			wantErr: "invalid log level",
		},
		{
			name:    "negative indent",
			mode:    ModeCLI,
			args:    []string{"--indent=-1"},
			wantErr: "indent must be between",
		},
		{
			name:    "oversized indent",
			mode:    ModeCLI,
			env:     map[string]string{"PDF2XFA_INDENT": "40"},
			wantErr: "indent must be between",
		},
		{
			name:    "non-numeric indent",
			mode:    ModeCLI,
			env:     map[string]string{"PDF2XFA_INDENT": "abc"},
			wantErr: "invalid indent value",
		},
		{
			name:    "non-numeric max file size",
			mode:    ModeStdio,
			env:     map[string]string{"PDF2XFA_MAXFILESIZE": "xyz"},
			wantErr: "invalid maxfilesize value",
		},
		{
			name:    "zero max file size",
			mode:    ModeCLI,
			args:    []string{"--maxfilesize=0"},
			wantErr: "maximum file size must be positive",
		},
		{
			name:    "dir is not a CLI flag",
			mode:    ModeCLI,
			args:    []string{"--dir=/tmp"},
			wantErr: "invalid arguments",
		},
		{
			name:    "missing server directory",
			mode:    ModeStdio,
			args:    []string{"--dir=/non/existent/pdf2xfa2/dir"},
			wantErr: "cannot access PDF directory",
		},
		{
			name:    "unknown mode",
			mode:    "batch",
			wantErr: "unknown mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, _, err := LoadFromArgs(tt.mode, "pdf2xfa2", tt.args)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromArgs_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		_, _, err := LoadFromArgs(ModeCLI, "pdf2xfa2", []string{arg})
		assert.ErrorIs(t, err, ErrHelp)
	}
}

func TestLoadFromArgs_Version(t *testing.T) {
	for _, arg := range []string{"-v", "--version"} {
		cfg, _, err := LoadFromArgs(ModeCLI, "pdf2xfa2", []string{arg})
		require.NoError(t, err)
		assert.True(t, cfg.ShowVersion)
	}
}

func TestLoadFromArgs_StdioDirectory(t *testing.T) {
	dir := t.TempDir()

	cfg, _, err := LoadFromArgs(ModeStdio, "xfa-mcp-server", []string{"--dir", dir})
	require.NoError(t, err)
	assert.True(t, cfg.IsStdioMode())
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, "xfa-mcp-server", cfg.ServerName)

	t.Setenv("PDF2XFA_DIR", dir)
	cfg, _, err = LoadFromArgs(ModeStdio, "xfa-mcp-server", nil)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.PDFDirectory)
}

func TestValidate_DirectoryIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := DefaultConfig(ModeStdio)
	cfg.PDFDirectory = file
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestFlagUsages(t *testing.T) {
	cli := FlagUsages(ModeCLI, "pdf2xfa2")
	assert.Contains(t, cli, "--indent")
	assert.Contains(t, cli, "--packet")
	assert.NotContains(t, cli, "--dir")

	assert.Contains(t, FlagUsages(ModeStdio, "xfa-mcp-server"), "--dir")
}

func TestConfig_String(t *testing.T) {
	cfg := DefaultConfig(ModeCLI)
	cfg.Password = "secret"

	s := cfg.String()
	assert.Contains(t, s, "Mode: cli")
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, `Password: "****"`)
}
