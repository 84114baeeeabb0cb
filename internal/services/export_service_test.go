package services

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeCommentTable seeds one nested table, Issues/Comments.csv, so an
// export has to deal with a slash in the table name.
func writeCommentTable(t *testing.T, store *tables.Store) {
	t.Helper()
	row := tables.NewRow(models.IssueCommentSchema)
	row.MustSet("id", int64(1))
	row.MustSet("issue_id", int64(7))
	row.MustSet("author", "anon-1")
	row.MustSet("body", "looks good")
	row.MustSet("created_at", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, store.WriteTable(models.DirIssues, models.IssueCommentSchema, []*tables.Row{row}))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Issues_Comments", sheetName("Issues/Comments"))
	assert.Equal(t, "Commits", sheetName("Commits"))
	assert.Len(t, sheetName(strings.Repeat("a", 40)), 31)
}

func TestExportXLSXNestedTables(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	writeCommentTable(t, store)

	out := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, NewExportService(dir).ExportXLSX(out))

	book, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer book.Close()

	require.Equal(t, []string{"Issues_Comments"}, book.GetSheetList())

	header, err := book.GetCellValue("Issues_Comments", "A1")
	require.NoError(t, err)
	assert.Equal(t, "id", header)

	body, err := book.GetCellValue("Issues_Comments", "D2")
	require.NoError(t, err)
	assert.Equal(t, "looks good", body)
}

func TestExportSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	writeCommentTable(t, store)

	out := filepath.Join(t.TempDir(), "export.db")
	require.NoError(t, NewExportService(dir).ExportSQLite(out))

	db, err := sql.Open("sqlite3", out)
	require.NoError(t, err)
	defer db.Close()

	var body string
	err = db.QueryRow(`SELECT "body" FROM "Issues_Comments" WHERE "id" = ?`, "1").Scan(&body)
	require.NoError(t, err)
	assert.Equal(t, "looks good", body)

	// Unset cells come back as SQL NULL, not empty strings.
	var count *string
	err = db.QueryRow(`SELECT "reaction_count" FROM "Issues_Comments" WHERE "id" = ?`, "1").Scan(&count)
	require.NoError(t, err)
	assert.Nil(t, count)
}

func TestExportEmptyDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "export.xlsx")
	assert.Error(t, NewExportService(dir).ExportXLSX(out))
}
