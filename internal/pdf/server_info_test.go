package pdf

import (
	"testing"
	"time"

	"github.com/a3tai/pdf-report-reader/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerInfo(t *testing.T) {
	service, root := newTestService(t)
	pdftest.WriteFile(t, root, "collbato/collbato_a.pdf", pdftest.RulesPage())

	result := service.PDFServerInfo("test-pdf-server", "1.0.0-test")

	assert.Equal(t, "test-pdf-server", result.ServerName)
	assert.Equal(t, "1.0.0-test", result.Version)
	assert.Equal(t, ServiceVersion, result.APIVersion)
	assert.Equal(t, root, result.Directory)
	assert.Equal(t, service.GetMaxFileSize(), result.MaxFileSize)
	assert.Equal(t, service.Thresholds(), result.Thresholds)
	assert.False(t, result.FromCache)
	require.NotNil(t, result.Files)
	assert.Equal(t, 1, result.Files.Total)

	expectedTools := []string{"pdf_extract_items", "pdf_extract_lines", "pdf_list_files", "pdf_server_info"}
	require.Len(t, result.AvailableTools, len(expectedTools))
	for i, tool := range result.AvailableTools {
		assert.Equal(t, expectedTools[i], tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotEmpty(t, tool.Usage)
		assert.NotEmpty(t, tool.Parameters)
	}

	assert.Contains(t, result.UsageGuidance, "pdf_list_files")
	assert.Contains(t, result.UsageGuidance, "10MB")
}

func TestServerInfo_CachesListing(t *testing.T) {
	service, root := newTestService(t)

	first := service.PDFServerInfo("s", "v")
	assert.False(t, first.FromCache)
	assert.Empty(t, first.Files.Files)

	pdftest.WriteFile(t, root, "premia/premia_bens.pdf", pdftest.RulesPage())

	second := service.PDFServerInfo("s", "v")
	assert.True(t, second.FromCache)
	assert.Empty(t, second.Files.Files)

	service.RefreshListing()
	third := service.PDFServerInfo("s", "v")
	assert.False(t, third.FromCache)
	assert.Equal(t, 1, third.Files.Total)
}

func TestListingCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewListingCache(time.Minute)
	cache.now = func() time.Time { return now }

	loads := 0
	load := func() *ReportFileList {
		loads++
		return &ReportFileList{Total: loads}
	}

	list, cached := cache.Get(load)
	assert.False(t, cached)
	assert.Equal(t, 1, list.Total)

	now = now.Add(30 * time.Second)
	list, cached = cache.Get(load)
	assert.True(t, cached)
	assert.Equal(t, 1, list.Total)

	now = now.Add(time.Minute)
	list, cached = cache.Get(load)
	assert.False(t, cached)
	assert.Equal(t, 2, list.Total)
}
