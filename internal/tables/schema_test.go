package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchemaEnforcement(t *testing.T) {
	schema := NewSchema("Things", "id", "name", "updated_at")

	row := NewRow(schema)
	assert.NoError(t, row.Set("id", int64(1)))
	assert.NoError(t, row.Set("name", "thing"))

	// A column outside the declared set is rejected and the row keeps
	// its other fields untouched.
	err := row.Set("color", "red")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Nil(t, row.Get("color"))
	assert.Equal(t, int64(1), row.Int64("id"))
	name, ok := row.String("name")
	assert.True(t, ok)
	assert.Equal(t, "thing", name)
}

func TestSchemaColumnsAreCopied(t *testing.T) {
	schema := NewSchema("Things", "id", "name")

	cols := schema.Columns()
	cols[0] = "mutated"

	assert.Equal(t, []string{"id", "name"}, schema.Columns())
}

func TestRowAccessors(t *testing.T) {
	schema := NewSchema("Things", "count", "flag", "when", "tags", "note")
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	row := NewRow(schema)
	row.MustSet("count", 42)
	row.MustSet("flag", true)
	row.MustSet("when", when)
	row.MustSet("tags", []string{"a", "b"})

	assert.Equal(t, 42, row.Int("count"))
	assert.True(t, row.Bool("flag"))
	got, ok := row.Time("when")
	assert.True(t, ok)
	assert.True(t, got.Equal(when))
	assert.Equal(t, []string{"a", "b"}, row.StringList("tags"))

	// Absent optionals read as not-present, never as errors.
	_, ok = row.String("note")
	assert.False(t, ok)
	_, ok = row.Time("note")
	assert.False(t, ok)
	assert.Nil(t, row.StringList("note"))
}

func TestRowAccessorsParseStrings(t *testing.T) {
	schema := NewSchema("Things", "count", "flag", "when", "tags")

	// Rows read back from disk hold string cells.
	row := NewRow(schema)
	row.MustSet("count", "7")
	row.MustSet("flag", "true")
	row.MustSet("when", "2024-05-01T12:00:00Z")
	row.MustSet("tags", "a|b")

	assert.Equal(t, 7, row.Int("count"))
	assert.Equal(t, int64(7), row.Int64("count"))
	assert.True(t, row.Bool("flag"))
	when, ok := row.Time("when")
	assert.True(t, ok)
	assert.Equal(t, 2024, when.Year())
	assert.Equal(t, []string{"a", "b"}, row.StringList("tags"))
}
