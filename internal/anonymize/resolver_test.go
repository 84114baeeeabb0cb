package anonymize

import (
	"testing"
	"time"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCommits(t *testing.T, store *tables.Store, commits []*models.Commit) {
	t.Helper()
	rows := make([]*tables.Row, 0, len(commits))
	for _, commit := range commits {
		rows = append(rows, commit.ToRow())
	}
	require.NoError(t, store.WriteTable(models.DirGit, models.CommitSchema, rows))
}

func readCommits(t *testing.T, store *tables.Store) []*models.Commit {
	t.Helper()
	rows, err := store.ReadTable(models.DirGit, models.CommitSchema)
	require.NoError(t, err)
	commits := make([]*models.Commit, 0, len(rows))
	for _, row := range rows {
		commits = append(commits, models.CommitFromRow(row))
	}
	return commits
}

func unknownCommit(sha, name string) *models.Commit {
	return &models.Commit{
		SHA:         sha,
		UnknownUser: &name,
		Message:     "change",
		CommittedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestAutoResolveMatchesOnEmail(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, false)

	anonID, err := a.Resolve(&UserInfo{InternalID: "u1", Email: strp("jdoe@example.com")})
	require.NoError(t, err)
	_, err = a.Resolve(&UserInfo{InternalID: "u2", Email: strp("other@example.com")})
	require.NoError(t, err)

	writeCommits(t, store, []*models.Commit{
		unknownCommit("sha1", "jdoe@example.com"),
		unknownCommit("sha2", "jdoe@example.com"),
	})

	resolver := NewResolver(store, a)
	resolved, err := resolver.AutoResolve()
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	for _, commit := range readCommits(t, store) {
		require.NotNil(t, commit.Author)
		assert.Equal(t, anonID, *commit.Author)
		require.NotNil(t, commit.Committer)
		assert.Equal(t, anonID, *commit.Committer)
		assert.Nil(t, commit.UnknownUser)
		assert.True(t, commit.Attributed())
	}

	assert.Equal(t, []string{"jdoe@example.com"}, a.Lookup(anonID).Aliases)
}

func TestAutoResolveNoMatchIsNoOp(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, false)

	_, err := a.Resolve(&UserInfo{InternalID: "u1", Email: strp("someone@example.com")})
	require.NoError(t, err)

	writeCommits(t, store, []*models.Commit{unknownCommit("sha1", "Stranger")})

	resolver := NewResolver(store, a)
	resolved, err := resolver.AutoResolve()
	require.NoError(t, err)
	assert.Zero(t, resolved)

	commits := readCommits(t, store)
	require.Len(t, commits, 1)
	require.NotNil(t, commits[0].UnknownUser)
	assert.Equal(t, "Stranger", *commits[0].UnknownUser)
}

func TestBindExisting(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, false)

	anonID, err := a.Resolve(&UserInfo{InternalID: "u1", Login: strp("alice")})
	require.NoError(t, err)

	writeCommits(t, store, []*models.Commit{
		unknownCommit("sha1", "A. Liddell"),
		unknownCommit("sha2", "somebody else"),
	})

	resolver := NewResolver(store, a)
	require.NoError(t, resolver.BindExisting("A. Liddell", anonID))

	commits := readCommits(t, store)
	require.NotNil(t, commits[0].Author)
	assert.Equal(t, anonID, *commits[0].Author)
	assert.Nil(t, commits[0].UnknownUser)

	// The other unknown string is untouched.
	require.NotNil(t, commits[1].UnknownUser)
	assert.Equal(t, "somebody else", *commits[1].UnknownUser)

	// Binding twice leaves a single alias entry.
	require.NoError(t, resolver.BindExisting("A. Liddell", anonID))
	assert.Equal(t, []string{"A. Liddell"}, a.Lookup(anonID).Aliases)
}

func TestBindExistingUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, false)

	resolver := NewResolver(store, a)
	assert.Error(t, resolver.BindExisting("A. Liddell", "no-such-id"))
}

func TestBindNewMintsIdentity(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, false)

	writeCommits(t, store, []*models.Commit{unknownCommit("sha1", "J. Doe")})

	resolver := NewResolver(store, a)
	require.NoError(t, resolver.BindNew("J. Doe", "jdoe-import"))

	require.Len(t, a.Identities(), 1)
	identity := a.Identities()[0]
	assert.Equal(t, "jdoe-import", identity.InternalID)
	assert.Equal(t, []string{"J. Doe"}, identity.Aliases)

	commits := readCommits(t, store)
	require.NotNil(t, commits[0].Author)
	assert.Equal(t, identity.AnonymousID, *commits[0].Author)
	assert.Nil(t, commits[0].UnknownUser)
}

func TestBindNewReversibleMode(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, true)

	writeCommits(t, store, []*models.Commit{unknownCommit("sha1", "J. Doe")})

	resolver := NewResolver(store, a)
	require.NoError(t, resolver.BindNew("J. Doe", "jdoe-import"))

	commits := readCommits(t, store)
	require.NotNil(t, commits[0].Author)
	assert.Equal(t, "jdoe-import", *commits[0].Author)
}

func TestUnknownUsersDistinctFirstSeen(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	a := newTestAnonymizer(t, dir, false)

	attributed := unknownCommit("sha3", "ignored")
	attributed.Bind("anon-x")
	writeCommits(t, store, []*models.Commit{
		unknownCommit("sha1", "J. Doe"),
		unknownCommit("sha2", "A. Liddell"),
		attributed,
		unknownCommit("sha4", "J. Doe"),
	})

	resolver := NewResolver(store, a)
	names, err := resolver.UnknownUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"J. Doe", "A. Liddell"}, names)
}
