package services

import (
	"testing"
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/stretchr/testify/assert"
)

var checkSchema = tables.NewSchema("Checked", "id", "title", "updated_at")

func checkRow(t *testing.T, id int64, updatedAt time.Time) *tables.Row {
	t.Helper()
	row := tables.NewRow(checkSchema)
	row.MustSet("id", id)
	row.MustSet("updated_at", updatedAt)
	return row
}

func TestNeedsRefreshEmptyPreviousTable(t *testing.T) {
	s := NewUpdateCheckService()
	now := time.Now().UTC()

	// Nothing stored, nothing remote: no refresh.
	assert.False(t, s.NeedsRefresh(nil, nil, "updated_at"))

	// Nothing stored, any remote data is new.
	assert.True(t, s.NeedsRefresh(&HeadItem{ID: 1, UpdatedAt: now}, nil, "updated_at"))
}

func TestNeedsRefreshStability(t *testing.T) {
	s := NewUpdateCheckService()
	when := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	previous := []*tables.Row{
		checkRow(t, 10, when),
		checkRow(t, 9, when.Add(-time.Hour)),
	}

	// Matching head: nothing to do.
	assert.False(t, s.NeedsRefresh(&HeadItem{ID: 10, UpdatedAt: when}, previous, "updated_at"))

	// A bumped timestamp on the head record flips the check.
	assert.True(t, s.NeedsRefresh(&HeadItem{ID: 10, UpdatedAt: when.Add(time.Minute)}, previous, "updated_at"))

	// A head record we have never stored flips the check too.
	assert.True(t, s.NeedsRefresh(&HeadItem{ID: 11, UpdatedAt: when}, previous, "updated_at"))
}

func TestNeedsRefreshEmptyRemote(t *testing.T) {
	s := NewUpdateCheckService()
	when := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	previous := []*tables.Row{checkRow(t, 10, when)}

	// Stored data but an empty remote collection: nothing new.
	assert.False(t, s.NeedsRefresh(nil, previous, "updated_at"))
}

func TestNeedsRefreshWithoutIDColumn(t *testing.T) {
	s := NewUpdateCheckService()
	schema := tables.NewSchema("Aggregate", "name", "updated_at")
	when := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	older := tables.NewRow(schema)
	older.MustSet("name", "a")
	older.MustSet("updated_at", when.Add(-time.Hour))
	newest := tables.NewRow(schema)
	newest.MustSet("name", "b")
	newest.MustSet("updated_at", when)
	previous := []*tables.Row{older, newest}

	// Tables without an id column compare against the newest stored
	// timestamp.
	assert.False(t, s.NeedsRefresh(&HeadItem{UpdatedAt: when}, previous, "updated_at"))
	assert.True(t, s.NeedsRefresh(&HeadItem{UpdatedAt: when.Add(time.Minute)}, previous, "updated_at"))
}
