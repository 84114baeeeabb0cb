package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// CommitSchema is the mined commit table. author and committer hold
// anonymous ids once attribution succeeds; unknown_user carries the
// raw committer string until the resolver binds it to an identity.
var CommitSchema = tables.NewSchema("Commits",
	"commit_sha",
	"author",
	"committer",
	"unknown_user",
	"message",
	"committed_at",
	"additions",
	"deletions",
	"total_changes",
	"is_merge",
	"parents",
	"branches",
	"tag",
)

// EditSchema is the per-file change table of the mined history.
var EditSchema = tables.NewSchema("Edits",
	"commit_sha",
	"file_path",
	"additions",
	"deletions",
)

// BranchSchema is the branch head table.
var BranchSchema = tables.NewSchema("Branches",
	"name",
	"commit_sha",
)

// Commit is one record mined from the local clone's history.
type Commit struct {
	SHA          string
	Author       *string
	Committer    *string
	UnknownUser  *string
	Message      string
	CommittedAt  time.Time
	Additions    int
	Deletions    int
	TotalChanges int
	IsMerge      bool
	Parents      []string
	Branches     []string
	Tag          *string
}

// Attributed reports whether both identity fields are resolved.
func (c *Commit) Attributed() bool {
	return c.Author != nil && c.Committer != nil && c.UnknownUser == nil
}

// Bind resolves the commit to an anonymous id and clears the raw
// committer string.
func (c *Commit) Bind(anonymousID string) {
	c.Author = &anonymousID
	c.Committer = &anonymousID
	c.UnknownUser = nil
}

func (c *Commit) ToRow() *tables.Row {
	row := tables.NewRow(CommitSchema)
	row.MustSet("commit_sha", c.SHA)
	row.MustSet("author", optString(c.Author))
	row.MustSet("committer", optString(c.Committer))
	row.MustSet("unknown_user", optString(c.UnknownUser))
	row.MustSet("message", c.Message)
	row.MustSet("committed_at", c.CommittedAt)
	row.MustSet("additions", c.Additions)
	row.MustSet("deletions", c.Deletions)
	row.MustSet("total_changes", c.TotalChanges)
	row.MustSet("is_merge", c.IsMerge)
	row.MustSet("parents", c.Parents)
	row.MustSet("branches", c.Branches)
	row.MustSet("tag", optString(c.Tag))
	return row
}

func CommitFromRow(row *tables.Row) *Commit {
	sha, _ := row.String("commit_sha")
	message, _ := row.String("message")
	return &Commit{
		SHA:          sha,
		Author:       strPtr(row, "author"),
		Committer:    strPtr(row, "committer"),
		UnknownUser:  strPtr(row, "unknown_user"),
		Message:      message,
		CommittedAt:  mustTime(row, "committed_at"),
		Additions:    row.Int("additions"),
		Deletions:    row.Int("deletions"),
		TotalChanges: row.Int("total_changes"),
		IsMerge:      row.Bool("is_merge"),
		Parents:      row.StringList("parents"),
		Branches:     row.StringList("branches"),
		Tag:          strPtr(row, "tag"),
	}
}

// Edit is one file touched by one commit.
type Edit struct {
	CommitSHA string
	FilePath  string
	Additions int
	Deletions int
}

func (e *Edit) ToRow() *tables.Row {
	row := tables.NewRow(EditSchema)
	row.MustSet("commit_sha", e.CommitSHA)
	row.MustSet("file_path", e.FilePath)
	row.MustSet("additions", e.Additions)
	row.MustSet("deletions", e.Deletions)
	return row
}

// Branch is one branch head of the local clone.
type Branch struct {
	Name      string
	CommitSHA string
}

func (b *Branch) ToRow() *tables.Row {
	row := tables.NewRow(BranchSchema)
	row.MustSet("name", b.Name)
	row.MustSet("commit_sha", b.CommitSHA)
	return row
}
