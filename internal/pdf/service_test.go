package pdf

import (
	"encoding/json"
	"testing"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
	"github.com/a3tai/pdf-report-reader/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	root := t.TempDir()
	service, err := NewService(Options{
		Directory:      root,
		MaxFileSize:    10 * 1024 * 1024,
		Municipalities: []string{"collbato", "santboi", "premia"},
		Reports:        []string{"a", "bens"},
		Thresholds:     geometry.DefaultThresholds(),
	})
	require.NoError(t, err)
	return service, root
}

func TestNewService(t *testing.T) {
	service, root := newTestService(t)

	assert.Equal(t, int64(10*1024*1024), service.GetMaxFileSize())
	assert.Equal(t, root, service.Directory())
	assert.Equal(t, geometry.DefaultThresholds(), service.Thresholds())
	assert.NotNil(t, service.catalog)
	assert.NotNil(t, service.extractor)
	assert.NotNil(t, service.serverInfo)
}

func TestNewService_InvalidOptions(t *testing.T) {
	_, err := NewService(Options{Thresholds: geometry.DefaultThresholds()})
	assert.Error(t, err)

	th := geometry.DefaultThresholds()
	th.MergeTolerance = -1
	_, err = NewService(Options{Directory: t.TempDir(), Thresholds: th})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge tolerance")
}

func TestService_ExtractContent(t *testing.T) {
	service, root := newTestService(t)
	pdftest.WriteFile(t, root, "collbato/collbato_a.pdf", pdftest.RulesPage(), pdftest.Page{Content: "BT /F1 10 Tf 72 700 Td (Page two) Tj ET"})

	req := ReportRequest{Municipality: "collbato", Report: "a"}
	result, err := service.ExtractContent(req)
	require.NoError(t, err)

	assert.Equal(t, req, result.Request)
	assert.Equal(t, FileRef{Name: "collbato_a.pdf", Path: "collbato/collbato_a.pdf"}, result.File)
	assert.Equal(t, 2, result.Result.TotalPages)
	assert.Equal(t, 2, result.Result.ProcessedPages)

	summary, ok := result.Result.HorizontalLines.ForPage(1)
	require.True(t, ok)
	assert.Equal(t, []float64{92, 390.5}, summary.YPositions)
	_, ok = result.Result.HorizontalLines.ForPage(2)
	assert.False(t, ok)

	assert.Contains(t, result.Result.Items[0].Text, "Hello World")
}

func TestService_ExtractContentSinglePage(t *testing.T) {
	service, root := newTestService(t)
	pdftest.WriteFile(t, root, "santboi/santboi_bens.pdf", pdftest.RulesPage())

	result, err := service.ExtractContent(ReportRequest{Municipality: "santboi", Report: "bens", Page: intPtr(1)})
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded struct {
		Parametros map[string]any `json:"parametros"`
		Archivo    FileRef        `json:"archivo"`
		Resultado  struct {
			HorizontalLines LineSummary `json:"horizontal_lines"`
		} `json:"resultado"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "santboi", decoded.Parametros["poble"])
	assert.Equal(t, float64(1), decoded.Parametros["pag"])
	assert.Equal(t, "santboi_bens.pdf", decoded.Archivo.Name)
	assert.Equal(t, LineSummary{Count: 2, YPositions: []float64{92, 390.5}}, decoded.Resultado.HorizontalLines)
}

func TestService_ExtractContentErrors(t *testing.T) {
	service, root := newTestService(t)
	pdftest.WriteFile(t, root, "premia/premia_a.pdf", pdftest.RulesPage())

	tests := []struct {
		name     string
		req      ReportRequest
		wantType errors.ErrorType
	}{
		{"unknown municipality", ReportRequest{Municipality: "vic", Report: "a"}, errors.ErrorTypeInvalidParameter},
		{"unknown report", ReportRequest{Municipality: "premia", Report: "x"}, errors.ErrorTypeInvalidParameter},
		{"missing file", ReportRequest{Municipality: "premia", Report: "bens"}, errors.ErrorTypeDocumentNotFound},
		{"page zero", ReportRequest{Municipality: "premia", Report: "a", Page: intPtr(0)}, errors.ErrorTypeInvalidPageNumber},
		{"page past end", ReportRequest{Municipality: "premia", Report: "a", Page: intPtr(2)}, errors.ErrorTypeInvalidPageNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ExtractContent(tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.TypeOf(err), err.Error())
		})
	}
}

func TestService_ExtractLines(t *testing.T) {
	service, root := newTestService(t)
	pdftest.WriteFile(t, root, "collbato/collbato_bens.pdf", pdftest.RulesPage())

	result, err := service.ExtractLines(ReportRequest{Municipality: "collbato", Report: "bens", Page: intPtr(1)})
	require.NoError(t, err)

	report := result.Result
	assert.Equal(t, 1, report.TotalPages)
	assert.Equal(t, Dimensions{Width: 612, Height: 792}, report.Dimensions)
	require.Len(t, report.Lines, 2)
	assert.InDelta(t, 92, report.Lines[0].Y, 1e-9)
	assert.InDelta(t, 2, report.Lines[0].Thickness, 1e-9)
	assert.InDelta(t, 500, report.Lines[0].Length, 1e-9)
	assert.InDelta(t, 390.5, report.Lines[1].Y, 1e-9)
	assert.InDelta(t, 3, report.Lines[1].Thickness, 1e-9)
	assert.Equal(t, 2, report.Statistics.Count)
}

func TestService_ExtractLinesRequiresPage(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ExtractLines(ReportRequest{Municipality: "collbato", Report: "a"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidParameter))
}

func TestService_WithLibrary(t *testing.T) {
	root := t.TempDir()
	lib := newFakeLibrary(&fakePage{drawings: []geometry.DrawingPath{segmentPath(0, 10, 100, 10, 1)}})
	service, err := NewService(Options{
		Directory:      root,
		Municipalities: []string{"premia"},
		Reports:        []string{"a"},
		Thresholds:     geometry.DefaultThresholds(),
		Library:        lib,
	})
	require.NoError(t, err)
	pdftest.WriteFile(t, root, "premia/premia_a.pdf", pdftest.RulesPage())

	result, err := service.ExtractContent(ReportRequest{Municipality: "premia", Report: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Result.HorizontalLines.Len())
	assert.Len(t, lib.opened, 1)
	assert.Equal(t, 1, lib.lastDocument().closes)
}

func TestService_Info(t *testing.T) {
	service, _ := newTestService(t)

	info := service.Info()
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "running", info.Status)
	assert.Contains(t, info.Message, "PDF Reader API")
	assert.Equal(t, []string{"collbato", "santboi", "premia"}, info.Municipalities)
	assert.Equal(t, []string{"a", "bens"}, info.Reports)
}

func TestService_ListFiles(t *testing.T) {
	service, root := newTestService(t)
	pdftest.WriteFile(t, root, "santboi/santboi_a.pdf", pdftest.RulesPage())

	list := service.ListFiles()
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.Missing)
	require.Len(t, list.Files, 2)
	assert.True(t, list.Files[0].Exists)
}
