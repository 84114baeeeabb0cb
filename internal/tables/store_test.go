package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return NewSchema("Items", "id", "name", "email", "updated_at", "tags")
}

func TestStoreRoundTrip(t *testing.T) {
	schema := testSchema()
	store := NewStore(t.TempDir())
	when := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

	first := NewRow(schema)
	first.MustSet("id", int64(1))
	first.MustSet("name", "alpha")
	first.MustSet("email", "alpha@example.com")
	first.MustSet("updated_at", when)
	first.MustSet("tags", []string{"x", "y"})

	// Second row leaves the optional columns absent.
	second := NewRow(schema)
	second.MustSet("id", int64(2))
	second.MustSet("name", "beta")

	require.NoError(t, store.WriteTable("Sub", schema, []*Row{first, second}))

	rows, err := store.ReadTable("Sub", schema)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].Int64("id"))
	email, ok := rows[0].String("email")
	assert.True(t, ok)
	assert.Equal(t, "alpha@example.com", email)
	got, ok := rows[0].Time("updated_at")
	assert.True(t, ok)
	assert.True(t, got.Equal(when))
	assert.Equal(t, []string{"x", "y"}, rows[0].StringList("tags"))

	// Absent optionals come back absent.
	_, ok = rows[1].String("email")
	assert.False(t, ok)
	_, ok = rows[1].Time("updated_at")
	assert.False(t, ok)
}

func TestStoreMissingTableReadsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())

	rows, err := store.ReadTable("Nowhere", testSchema())
	assert.NoError(t, err)
	assert.Empty(t, rows)
	assert.False(t, store.Exists("Nowhere", testSchema()))
}

func TestStoreWriteReplacesWholeTable(t *testing.T) {
	schema := testSchema()
	store := NewStore(t.TempDir())

	old := NewRow(schema)
	old.MustSet("id", int64(1))
	old.MustSet("name", "old")
	require.NoError(t, store.WriteTable("", schema, []*Row{old}))

	fresh := NewRow(schema)
	fresh.MustSet("id", int64(2))
	fresh.MustSet("name", "fresh")
	require.NoError(t, store.WriteTable("", schema, []*Row{fresh}))

	rows, err := store.ReadTable("", schema)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].Int64("id"))
}

func TestStoreRejectsForeignSchemaRow(t *testing.T) {
	store := NewStore(t.TempDir())
	other := NewSchema("Other", "id")

	row := NewRow(other)
	row.MustSet("id", int64(1))

	err := store.WriteTable("", testSchema(), []*Row{row})
	assert.Error(t, err)
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	registry := NewRegistry(t.TempDir())
	ref := RepoRef{Owner: "octocat", Name: "hello-world"}

	require.NoError(t, registry.Add(ref))
	require.NoError(t, registry.Add(ref))
	require.NoError(t, registry.Add(RepoRef{Owner: "octocat", Name: "other"}))

	refs, err := registry.List()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, ref, refs[0])
	assert.Equal(t, "octocat-hello-world", refs[0].Slug())
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("octocat/hello-world")
	require.NoError(t, err)
	assert.Equal(t, "octocat", ref.Owner)
	assert.Equal(t, "hello-world", ref.Name)

	_, err = ParseRef("not-a-ref")
	assert.Error(t, err)

	_, err = ParseRef("owner/")
	assert.Error(t, err)
}
