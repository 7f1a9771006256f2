package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-report-reader/internal/config"
	"github.com/a3tai/pdf-report-reader/internal/pdf"
	"github.com/a3tai/pdf-report-reader/internal/pdf/pdftest"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()
	cfg.ServerName = "test-server"

	pdfService, err := pdf.NewService(pdf.Options{
		Directory:      cfg.PDFDirectory,
		MaxFileSize:    cfg.MaxFileSize,
		Municipalities: cfg.Municipalities,
		Reports:        cfg.Reports,
		Thresholds:     cfg.Thresholds(),
	})
	require.NoError(t, err)

	server, err := NewServer(cfg, pdfService)
	require.NoError(t, err)
	return server, cfg.PDFDirectory
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	server, _ := newTestServer(t)
	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.pdfService)

	_, err := NewServer(config.DefaultConfig(), nil)
	assert.Error(t, err)
	_, err = NewServer(nil, server.pdfService)
	assert.Error(t, err)
}

func TestServer_HandleExtractItems(t *testing.T) {
	server, root := newTestServer(t)
	pdftest.WriteFile(t, root, "collbato/collbato_a.pdf", pdftest.RulesPage())

	result, err := server.handleExtractItems(context.Background(), callRequest(map[string]interface{}{
		"poble":   "collbato",
		"informe": "a",
		"pag":     float64(1),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	var decoded struct {
		Archivo   pdf.FileRef `json:"archivo"`
		Resultado struct {
			ProcessedPages  int             `json:"processed_pages"`
			HorizontalLines pdf.LineSummary `json:"horizontal_lines"`
		} `json:"resultado"`
	}
	require.NoError(t, json.Unmarshal([]byte(extractTextFromResult(result)), &decoded))
	assert.Equal(t, "collbato_a.pdf", decoded.Archivo.Name)
	assert.Equal(t, 1, decoded.Resultado.ProcessedPages)
	assert.Equal(t, []float64{92, 390.5}, decoded.Resultado.HorizontalLines.YPositions)
}

func TestServer_HandleExtractItemsErrors(t *testing.T) {
	server, root := newTestServer(t)
	pdftest.WriteFile(t, root, "premia/premia_a.pdf", pdftest.RulesPage())

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr string
	}{
		{"missing poble", map[string]interface{}{"informe": "a"}, "poble"},
		{"missing informe", map[string]interface{}{"poble": "premia"}, "informe"},
		{"unknown municipality", map[string]interface{}{"poble": "vic", "informe": "a"}, "not valid"},
		{"missing file", map[string]interface{}{"poble": "premia", "informe": "bens"}, "no PDF file found"},
		{"page out of range", map[string]interface{}{"poble": "premia", "informe": "a", "pag": float64(4)}, "INVALID_PAGE_NUMBER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleExtractItems(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.wantErr)
		})
	}
}

func TestServer_HandleExtractLines(t *testing.T) {
	server, root := newTestServer(t)
	pdftest.WriteFile(t, root, "santboi/santboi_bens.pdf", pdftest.RulesPage())

	result, err := server.handleExtractLines(context.Background(), callRequest(map[string]interface{}{
		"poble":   "santboi",
		"informe": "bens",
		"pag":     float64(1),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.Contains(t, extractTextFromResult(result), `"statistics"`)

	missingPage, err := server.handleExtractLines(context.Background(), callRequest(map[string]interface{}{
		"poble":   "santboi",
		"informe": "bens",
	}))
	require.NoError(t, err)
	assert.True(t, missingPage.IsError)
	assert.Contains(t, extractTextFromResult(missingPage), "'pag' is required")
}

func TestServer_HandleListFiles(t *testing.T) {
	server, root := newTestServer(t)
	pdftest.WriteFile(t, root, "premia/premia_bens.pdf", pdftest.RulesPage())

	result, err := server.handleListFiles(context.Background(), callRequest(nil))
	require.NoError(t, err)

	var list pdf.ReportFileList
	require.NoError(t, json.Unmarshal([]byte(extractTextFromResult(result)), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.Missing)
}

func TestServer_HandleServerInfo(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := extractTextFromResult(result)
	for _, want := range []string{"test-server", "collbato", "pdf_extract_items", "pdf_extract_lines", "merge tolerance 3"} {
		assert.True(t, strings.Contains(text, want), "server info should mention %q", want)
	}
}

func TestServer_HandleServerInfoRefresh(t *testing.T) {
	server, root := newTestServer(t)

	_, err := server.handleServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)

	pdftest.WriteFile(t, root, "collbato/collbato_a.pdf", pdftest.RulesPage())

	result, err := server.handleServerInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.NotContains(t, extractTextFromResult(result), "collbato/collbato_a.pdf", "listing is served from cache")

	result, err = server.handleServerInfo(context.Background(), callRequest(map[string]interface{}{"refresh": true}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "✓ collbato/collbato_a.pdf")
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	// Try to extract text content
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		// Handle pointer to TextContent as well
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
