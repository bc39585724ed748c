package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf2xfa2/internal/config"
	"github.com/a3tai/pdf2xfa2/internal/pdf"
	"github.com/a3tai/pdf2xfa2/internal/testpdf"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig(config.ModeStdio)
	cfg.PDFDirectory = dir
	cfg.Version = "1.0.0"

	pdfService, err := pdf.NewService(afero.NewOsFs(), cfg)
	require.NoError(t, err)

	server, err := NewServer(cfg, pdfService)
	require.NoError(t, err)

	return server, dir
}

func writePDF(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig(config.ModeStdio)
	pdfService, err := pdf.NewService(afero.NewMemMapFs(), cfg)
	require.NoError(t, err)

	_, err = NewServer(nil, pdfService)
	assert.Error(t, err)

	_, err = NewServer(cfg, nil)
	assert.Error(t, err)

	cfg.PDFDirectory = ""
	_, err = NewServer(cfg, pdfService)
	assert.Error(t, err)

	server, _ := newTestServer(t)
	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.paths)
}

func TestServer_HandleXFAExtract(t *testing.T) {
	server, dir := newTestServer(t)
	writePDF(t, dir, "form.pdf", testpdf.SingleStream(testpdf.SampleXDP, testpdf.Options{Compress: true}))

	result, err := server.handleXFAExtract(context.Background(), callRequest(map[string]interface{}{
		"path": "form",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Destination: "+filepath.Join(dir, "form.xfa"))
	assert.Contains(t, text, "Packets: xdp")

	out, err := os.ReadFile(filepath.Join(dir, "form.xfa"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<?xml version="1.0" encoding="UTF-8"?>`)
}

func TestServer_HandleXFAExtract_OutputAndPacket(t *testing.T) {
	server, dir := newTestServer(t)
	writePDF(t, dir, "form.pdf", testpdf.PacketArray(testpdf.SamplePackets(), testpdf.Options{}))

	result, err := server.handleXFAExtract(context.Background(), callRequest(map[string]interface{}{
		"path":   "form.pdf",
		"output": "data",
		"packet": "datasets",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.Contains(t, extractTextFromResult(result), "Packets: datasets")

	out, err := os.ReadFile(filepath.Join(dir, "data.xfa"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<xfa:datasets")
}

func TestServer_HandleXFAExtract_Errors(t *testing.T) {
	server, dir := newTestServer(t)
	writePDF(t, dir, "plain.pdf", testpdf.SingleStream("", testpdf.Options{OmitAcroForm: true}))

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantText string
	}{
		{
			name:     "missing path",
			args:     map[string]interface{}{},
			wantText: "path",
		},
		{
			name:     "no AcroForm",
			args:     map[string]interface{}{"path": "plain.pdf"},
			wantText: "no AcroForm found in source document",
		},
		{
			name:     "missing file",
			args:     map[string]interface{}{"path": "missing.pdf"},
			wantText: "source file does not exist",
		},
		{
			name:     "source outside directory",
			args:     map[string]interface{}{"path": "../form.pdf"},
			wantText: "outside configured directory",
		},
		{
			name:     "output outside directory",
			args:     map[string]interface{}{"path": "plain.pdf", "output": "/etc/form.xfa"},
			wantText: "outside configured directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleXFAExtract(context.Background(), callRequest(tt.args))
			require.NoError(t, err, "failures are tool errors, not transport errors")
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.wantText)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "plain.xfa"))
	assert.True(t, os.IsNotExist(err))
}

func TestServer_HandleXFAInspect(t *testing.T) {
	server, dir := newTestServer(t)
	writePDF(t, dir, "form.pdf", testpdf.PacketArray(testpdf.SamplePackets(), testpdf.Options{}))

	result, err := server.handleXFAInspect(context.Background(), callRequest(map[string]interface{}{
		"path": "form",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Has AcroForm: true")
	assert.Contains(t, text, "Has XFA: true")
	assert.Contains(t, text, "2. template")

	result, err = server.handleXFAInspect(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	server, dir := newTestServer(t)
	writePDF(t, dir, "form.pdf", testpdf.SingleStream(testpdf.SampleXDP, testpdf.Options{}))
	writePDF(t, dir, "notes.pdf", make([]byte, 1024))

	result, err := server.handlePDFValidateFile(context.Background(), callRequest(map[string]interface{}{
		"path": "form.pdf",
	}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "is valid and readable")

	result, err = server.handlePDFValidateFile(context.Background(), callRequest(map[string]interface{}{
		"path": "notes.pdf",
	}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "PDF validation failed")
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
