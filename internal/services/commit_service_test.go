package services

import (
	"testing"
	"time"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string {
	return &s
}

func minedCommit(sha, name, email string) *MinedCommit {
	return &MinedCommit{
		SHA:            sha,
		AuthorName:     name,
		AuthorEmail:    email,
		CommitterName:  name,
		CommitterEmail: email,
		Message:        "change",
		CommittedAt:    time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC),
		Parents:        []string{"parent"},
	}
}

func TestCommitExtractAttributesByEmail(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	anonymizer, err := anonymize.NewAnonymizer(store, false)
	require.NoError(t, err)

	anonID, err := anonymizer.Resolve(&anonymize.UserInfo{
		InternalID: "u1",
		Email:      strp("alice@example.com"),
	})
	require.NoError(t, err)

	service := NewCommitService(anonymizer)
	err = service.Extract(store, []*MinedCommit{
		minedCommit("sha1", "Alice", "alice@example.com"),
		minedCommit("sha2", "Nobody", "nobody@example.com"),
	}, nil, nil)
	require.NoError(t, err)

	rows, err := store.ReadTable(models.DirGit, models.CommitSchema)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	attributed := models.CommitFromRow(rows[0])
	require.NotNil(t, attributed.Author)
	assert.Equal(t, anonID, *attributed.Author)
	require.NotNil(t, attributed.Committer)
	assert.Equal(t, anonID, *attributed.Committer)
	assert.Nil(t, attributed.UnknownUser)

	unknown := models.CommitFromRow(rows[1])
	assert.Nil(t, unknown.Author)
	require.NotNil(t, unknown.UnknownUser)
	assert.Equal(t, "Nobody <nobody@example.com>", *unknown.UnknownUser)
}

func TestCommitExtractAttributesByAlias(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	anonymizer, err := anonymize.NewAnonymizer(store, false)
	require.NoError(t, err)

	anonID, err := anonymizer.Resolve(&anonymize.UserInfo{InternalID: "u1", Login: strp("alice")})
	require.NoError(t, err)
	require.NoError(t, anonymizer.AddAlias(anonID, "A. Liddell <old@example.com>"))

	service := NewCommitService(anonymizer)
	err = service.Extract(store, []*MinedCommit{
		minedCommit("sha1", "A. Liddell", "old@example.com"),
	}, nil, nil)
	require.NoError(t, err)

	rows, err := store.ReadTable(models.DirGit, models.CommitSchema)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	commit := models.CommitFromRow(rows[0])
	require.NotNil(t, commit.Author)
	assert.Equal(t, anonID, *commit.Author)
}

func TestCommitExtractWritesEditsAndBranches(t *testing.T) {
	dir := t.TempDir()
	store := tables.NewStore(dir)
	anonymizer, err := anonymize.NewAnonymizer(store, false)
	require.NoError(t, err)

	mined := minedCommit("sha1", "Someone", "someone@example.com")
	mined.Parents = []string{"p1", "p2"}
	mined.Additions = 12
	mined.Deletions = 3
	mined.Branches = []string{"main"}
	mined.Tag = strp("v1.0.0")

	service := NewCommitService(anonymizer)
	err = service.Extract(store,
		[]*MinedCommit{mined},
		[]*MinedEdit{{SHA: "sha1", Path: "main.go", Additions: 12, Deletions: 3}},
		[]*MinedBranch{{Name: "main", Ref: "main", SHA: "sha1"}},
	)
	require.NoError(t, err)

	commitRows, err := store.ReadTable(models.DirGit, models.CommitSchema)
	require.NoError(t, err)
	require.Len(t, commitRows, 1)
	commit := models.CommitFromRow(commitRows[0])
	assert.True(t, commit.IsMerge)
	assert.Equal(t, 15, commit.TotalChanges)
	assert.Equal(t, []string{"main"}, commit.Branches)
	require.NotNil(t, commit.Tag)
	assert.Equal(t, "v1.0.0", *commit.Tag)

	editRows, err := store.ReadTable(models.DirGit, models.EditSchema)
	require.NoError(t, err)
	require.Len(t, editRows, 1)
	path, _ := editRows[0].String("file_path")
	assert.Equal(t, "main.go", path)

	branchRows, err := store.ReadTable(models.DirGit, models.BranchSchema)
	require.NoError(t, err)
	require.Len(t, branchRows, 1)
	name, _ := branchRows[0].String("name")
	assert.Equal(t, "main", name)
}

func TestRawUserString(t *testing.T) {
	assert.Equal(t, "J. Doe <j@example.com>", rawUserString("J. Doe", "j@example.com"))
	assert.Equal(t, "J. Doe", rawUserString("J. Doe", ""))
}
