package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/a3tai/pdf-report-reader/internal/config"
	"github.com/a3tai/pdf-report-reader/internal/descriptions"
	"github.com/a3tai/pdf-report-reader/internal/pdf"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
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

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// reportOptions are the arguments shared by the extraction tools
func reportOptions(pageRequired bool) []mcp.ToolOption {
	pageOpts := []mcp.PropertyOption{
		mcp.Description("1-based page number"),
		mcp.Min(1),
	}
	if pageRequired {
		pageOpts = append(pageOpts, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithString("poble",
			mcp.Required(),
			mcp.Description("Municipality identifier, e.g. collbato"),
		),
		mcp.WithString("informe",
			mcp.Required(),
			mcp.Description("Report type, e.g. a or bens"),
		),
		mcp.WithNumber("pag", pageOpts...),
	}
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractItemsTool := mcp.NewTool("pdf_extract_items",
		append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_items"))},
			reportOptions(false)...)...,
	)
	s.mcpServer.AddTool(extractItemsTool, s.handleExtractItems)

	extractLinesTool := mcp.NewTool("pdf_extract_lines",
		append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_lines"))},
			reportOptions(true)...)...,
	)
	s.mcpServer.AddTool(extractLinesTool, s.handleExtractLines)

	listFilesTool := mcp.NewTool("pdf_list_files",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_list_files")),
	)
	s.mcpServer.AddTool(listFilesTool, s.handleListFiles)

	serverInfoTool := mcp.NewTool("pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
		mcp.WithBoolean("refresh",
			mcp.Description("Rescan the documents directory instead of using the cached listing"),
		),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleExtractItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := reportRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractContent(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleExtractLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := reportRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractLines(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleListFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.pdfService.ListFiles())
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if request.GetBool("refresh", false) {
		s.pdfService.RefreshListing()
	}
	result := s.pdfService.PDFServerInfo(s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// reportRequest reads the report arguments. pag is optional here; the
// service decides whether a page is required.
func reportRequest(request mcp.CallToolRequest) (pdf.ReportRequest, error) {
	var req pdf.ReportRequest

	municipality, err := request.RequireString("poble")
	if err != nil {
		return req, err
	}
	report, err := request.RequireString("informe")
	if err != nil {
		return req, err
	}
	req.Municipality, req.Report = municipality, report

	if raw, ok := request.GetArguments()["pag"]; ok && raw != nil {
		page, err := request.RequireInt("pag")
		if err != nil {
			return req, err
		}
		req.Page = &page
	}
	return req, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Formatting methods
func (s *Server) formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Documents Directory: %s\n", result.Directory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("🏘️  Municipalities: %v\n", result.Municipalities)
	text += fmt.Sprintf("📑 Report Types: %v\n", result.Reports)
	th := result.Thresholds
	text += fmt.Sprintf("📐 Line Thresholds: y tolerance %g, min length %g, max rule height %g, min rule width %g, merge tolerance %g\n\n",
		th.LineYTolerance, th.MinLineLength, th.MaxRuleHeight, th.MinRuleWidth, th.MergeTolerance)

	// Report files
	if result.Files != nil && len(result.Files.Files) > 0 {
		text += fmt.Sprintf("📂 Report Files (%d present, %d missing):\n", result.Files.Total, result.Files.Missing)
		for _, f := range result.Files.Files {
			mark := "✗"
			if f.Exists {
				mark = "✓"
			}
			text += fmt.Sprintf("   %s %s\n", mark, f.Path)
		}
		text += "\n"
	} else {
		text += "📂 Report Files: no municipality directories found\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server over standard I/O
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF report MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
