package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a3tai/pdf-report-reader/internal/pdf/errors"
	"github.com/a3tai/pdf-report-reader/internal/pdf/pdftest"
	"github.com/a3tai/pdf-report-reader/internal/pdf/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, maxFileSize int64) (*Catalog, string) {
	t.Helper()

	root := t.TempDir()
	paths, err := security.NewPathValidator(root)
	require.NoError(t, err)
	return NewCatalog(paths, NewValidator(maxFileSize), []string{"collbato", "santboi", "premia"}, []string{"a", "bens"}), root
}

func TestCatalog_ValidateRequest(t *testing.T) {
	c, _ := newTestCatalog(t, 0)

	tests := []struct {
		name         string
		municipality string
		report       string
		wantErr      string
	}{
		{"valid", "santboi", "bens", ""},
		{"unknown municipality", "girona", "a", "municipality 'girona' is not valid"},
		{"unknown report", "premia", "b", "report 'b' is not valid"},
		{"case sensitive", "Collbato", "a", "municipality 'Collbato' is not valid"},
		{"traversal", "../collbato", "a", "is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.ValidateRequest(tt.municipality, tt.report)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidParameter))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalog_ValidateRequestListsOptions(t *testing.T) {
	c, _ := newTestCatalog(t, 0)

	pe := errors.AsPDFError(c.ValidateRequest("girona", "a"))
	assert.Equal(t, "municipality 'girona' is not valid", pe.Message)
	assert.Equal(t, "available options: [collbato santboi premia]", pe.Context)

	pe = errors.AsPDFError(c.ValidateRequest("premia", "b"))
	assert.Equal(t, "available options: [a bens]", pe.Context)
}

func TestCatalog_Locate(t *testing.T) {
	c, root := newTestCatalog(t, 0)
	pdftest.WriteFile(t, root, "collbato/collbato_a.pdf", pdftest.RulesPage())

	path, ref, err := c.Locate("collbato", "a")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "collbato", "collbato_a.pdf"), path)
	assert.Equal(t, FileRef{Name: "collbato_a.pdf", Path: "collbato/collbato_a.pdf"}, ref)
}

func TestCatalog_LocateMissing(t *testing.T) {
	c, _ := newTestCatalog(t, 0)

	_, _, err := c.Locate("collbato", "bens")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDocumentNotFound))
	assert.Contains(t, err.Error(), "collbato_bens.pdf")
}

func TestCatalog_LocateInvalidFile(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		c, root := newTestCatalog(t, 0)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "premia"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "premia", "premia_a.pdf"), nil, 0o644))

		_, _, err := c.Locate("premia", "a")
		assert.True(t, errors.IsType(err, errors.ErrorTypeDocumentOpen))
	})

	t.Run("too large", func(t *testing.T) {
		c, root := newTestCatalog(t, 16)
		pdftest.WriteFile(t, root, "premia/premia_a.pdf", pdftest.RulesPage())

		_, _, err := c.Locate("premia", "a")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeDocumentOpen))
		assert.Contains(t, err.Error(), "file too large")
	})
}

func TestCatalog_List(t *testing.T) {
	c, root := newTestCatalog(t, 0)
	pdftest.WriteFile(t, root, "collbato/collbato_a.pdf", pdftest.RulesPage())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "premia"), 0o755))

	list := c.List()

	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 3, list.Missing)
	assert.Equal(t, []ReportFile{
		{Municipality: "collbato", Report: "a", Name: "collbato_a.pdf", Path: "collbato/collbato_a.pdf", Exists: true},
		{Municipality: "collbato", Report: "bens", Name: "collbato_bens.pdf", Path: "collbato/collbato_bens.pdf"},
		{Municipality: "premia", Report: "a", Name: "premia_a.pdf", Path: "premia/premia_a.pdf"},
		{Municipality: "premia", Report: "bens", Name: "premia_bens.pdf", Path: "premia/premia_bens.pdf"},
	}, list.Files, "municipalities without a directory are skipped")
}

func TestCatalog_ListEmptyRoot(t *testing.T) {
	c, _ := newTestCatalog(t, 0)

	list := c.List()
	assert.Empty(t, list.Files)
	assert.NotNil(t, list.Files)
	assert.Zero(t, list.Total)
	assert.Zero(t, list.Missing)
}

func TestCatalog_ListsAreCopies(t *testing.T) {
	c, _ := newTestCatalog(t, 0)

	m := c.Municipalities()
	m[0] = "changed"
	assert.Equal(t, "collbato", c.Municipalities()[0])
	assert.Equal(t, []string{"a", "bens"}, c.Reports())
	assert.Equal(t, "santboi_bens.pdf", FileName("santboi", "bens"))
}
