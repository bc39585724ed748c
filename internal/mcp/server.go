package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf2xfa2/internal/config"
	"github.com/a3tai/pdf2xfa2/internal/descriptions"
	"github.com/a3tai/pdf2xfa2/internal/pdf"
	"github.com/a3tai/pdf2xfa2/internal/pdf/paths"
	"github.com/a3tai/pdf2xfa2/internal/pdf/security"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	paths      *security.PathValidator
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	validator, err := security.NewPathValidator(cfg.PDFDirectory)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		paths:      validator,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	xfaExtractTool := mcp.NewTool(
		"xfa_extract",
		mcp.WithDescription(descriptions.GetToolDescription("xfa_extract")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file; .pdf is appended when it has no extension"),
		),
		mcp.WithString("output",
			mcp.Description("Destination file; defaults to the PDF path with a .xfa extension"),
		),
		mcp.WithString("packet",
			mcp.Description("Write only the named XFA packet, e.g. datasets or template"),
		),
	)
	s.mcpServer.AddTool(xfaExtractTool, s.handleXFAExtract)

	xfaInspectTool := mcp.NewTool(
		"xfa_inspect",
		mcp.WithDescription(descriptions.GetToolDescription("xfa_inspect")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(xfaInspectTool, s.handleXFAInspect)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)
}

// Handler functions
func (s *Server) handleXFAExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := []string{path}
	packet := ""
	arguments := request.GetArguments()
	if output, ok := arguments["output"].(string); ok && output != "" {
		args = append(args, output)
	}
	if p, ok := arguments["packet"].(string); ok {
		packet = p
	}

	pair, err := paths.Resolve(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, err := s.paths.NormalizePath(pair.Source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := s.paths.NormalizePath(pair.Destination)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractXFA(pdf.ExtractXFARequest{
		Source:      source,
		Destination: destination,
		Packet:      packet,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExtractXFAResult(result)), nil
}

func (s *Server) handleXFAInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, err := s.paths.NormalizePath(paths.WithDefaultExt(path, paths.DefaultSourceExt))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.InspectXFA(pdf.InspectXFARequest{Path: source})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatInspectXFAResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source, err := s.paths.NormalizePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: source})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

// Formatting helper functions
func (s *Server) formatExtractXFAResult(result *pdf.ExtractXFAResult) string {
	text := fmt.Sprintf("Extracted XFA from %s\n", result.Source)
	text += fmt.Sprintf("Destination: %s\n", result.Destination)
	text += fmt.Sprintf("Packets: %s\n", strings.Join(result.Packets, ", "))
	text += fmt.Sprintf("Bytes written: %d\n", result.BytesWritten)
	return text
}

func (s *Server) formatInspectXFAResult(result *pdf.InspectXFAResult) string {
	text := fmt.Sprintf("PDF: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Has AcroForm: %t\n", result.HasAcroForm)
	text += fmt.Sprintf("Has XFA: %t\n", result.HasXFA)

	if len(result.Packets) > 0 {
		text += "\nXFA packets:\n"
		for i, p := range result.Packets {
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, p.Name, p.Size)
		}
	}

	return text
}

// Run serves MCP requests over stdio until the input closes
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting XFA MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.paths.GetConfiguredDirectory())
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
