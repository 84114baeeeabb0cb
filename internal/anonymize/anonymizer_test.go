package anonymize

import (
	"testing"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string {
	return &s
}

func newTestAnonymizer(t *testing.T, dir string, reversible bool) *Anonymizer {
	t.Helper()
	a, err := NewAnonymizer(tables.NewStore(dir), reversible)
	require.NoError(t, err)
	return a
}

func TestResolveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := newTestAnonymizer(t, dir, false)

	user := &UserInfo{InternalID: "u1", Login: strp("alice")}

	first, err := a.Resolve(user)
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Len(t, a.Identities(), 1)

	second, err := a.Resolve(user)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, a.Identities(), 1)

	// The same identity survives into a later session.
	later := newTestAnonymizer(t, dir, false)
	third, err := later.Resolve(user)
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Len(t, later.Identities(), 1)
}

func TestResolveIsInjectiveOnInternalID(t *testing.T) {
	a := newTestAnonymizer(t, t.TempDir(), false)

	first, err := a.Resolve(&UserInfo{InternalID: "u1"})
	require.NoError(t, err)
	second, err := a.Resolve(&UserInfo{InternalID: "u2"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, a.Identities(), 2)
}

func TestResolveNilUser(t *testing.T) {
	dir := t.TempDir()
	a := newTestAnonymizer(t, dir, false)

	id, err := a.Resolve(nil)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, a.Identities())

	// No user table is written either.
	store := tables.NewStore(dir)
	assert.False(t, store.Exists("", models.IdentitySchema))
}

func TestResolveGhostAccount(t *testing.T) {
	a := newTestAnonymizer(t, t.TempDir(), false)

	id, err := a.Resolve(&UserInfo{InternalID: "gh1", Login: strp("ghost")})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, a.Identities())

	// A ghost login with a display name is a real account.
	id, err = a.Resolve(&UserInfo{InternalID: "gh2", Login: strp("ghost"), DisplayName: strp("Casper")})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestResolveReversibleMode(t *testing.T) {
	a := newTestAnonymizer(t, t.TempDir(), true)

	id, err := a.Resolve(&UserInfo{InternalID: "node-123"})
	require.NoError(t, err)
	assert.Equal(t, "node-123", id)
}

func TestResolvePersistsWriteThrough(t *testing.T) {
	dir := t.TempDir()
	a := newTestAnonymizer(t, dir, false)

	id, err := a.Resolve(&UserInfo{InternalID: "u1", Email: strp("a@example.com")})
	require.NoError(t, err)

	// The table on disk already carries the new identity.
	rows, err := tables.NewStore(dir).ReadTable("", models.IdentitySchema)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	identity := models.IdentityFromRow(rows[0])
	assert.Equal(t, "u1", identity.InternalID)
	assert.Equal(t, id, identity.AnonymousID)
	require.NotNil(t, identity.Email)
	assert.Equal(t, "a@example.com", *identity.Email)
}

func TestAddAliasIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := newTestAnonymizer(t, dir, false)

	id, err := a.Resolve(&UserInfo{InternalID: "u1"})
	require.NoError(t, err)

	require.NoError(t, a.AddAlias(id, "J. Doe"))
	require.NoError(t, a.AddAlias(id, "J. Doe"))

	identity := a.Lookup(id)
	require.NotNil(t, identity)
	assert.Equal(t, []string{"J. Doe"}, identity.Aliases)

	// Aliases survive persistence.
	later := newTestAnonymizer(t, dir, false)
	assert.Equal(t, []string{"J. Doe"}, later.Lookup(id).Aliases)
}

func TestAddAliasUnknownIdentity(t *testing.T) {
	a := newTestAnonymizer(t, t.TempDir(), false)
	assert.Error(t, a.AddAlias("missing", "J. Doe"))
}
