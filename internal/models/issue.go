package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// IssueSchema is the issue table. Identity-valued columns (author,
// assignee, closed_by) always hold anonymous ids.
var IssueSchema = tables.NewSchema("Issues",
	"id",
	"number",
	"title",
	"state",
	"labels",
	"author",
	"assignee",
	"assignees",
	"milestone",
	"comment_count",
	"locked",
	"created_at",
	"updated_at",
	"closed_at",
	"closed_by",
)

// Issue is one extracted issue record.
type Issue struct {
	ID           int64
	Number       int
	Title        string
	State        string
	Labels       []string
	Author       *string
	Assignee     *string
	Assignees    []string
	Milestone    *string
	CommentCount int
	Locked       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
	ClosedBy     *string
}

func (i *Issue) ToRow() *tables.Row {
	row := tables.NewRow(IssueSchema)
	row.MustSet("id", i.ID)
	row.MustSet("number", i.Number)
	row.MustSet("title", i.Title)
	row.MustSet("state", i.State)
	row.MustSet("labels", i.Labels)
	row.MustSet("author", optString(i.Author))
	row.MustSet("assignee", optString(i.Assignee))
	row.MustSet("assignees", i.Assignees)
	row.MustSet("milestone", optString(i.Milestone))
	row.MustSet("comment_count", i.CommentCount)
	row.MustSet("locked", i.Locked)
	row.MustSet("created_at", i.CreatedAt)
	row.MustSet("updated_at", i.UpdatedAt)
	row.MustSet("closed_at", optTime(i.ClosedAt))
	row.MustSet("closed_by", optString(i.ClosedBy))
	return row
}

func IssueFromRow(row *tables.Row) *Issue {
	title, _ := row.String("title")
	state, _ := row.String("state")
	return &Issue{
		ID:           row.Int64("id"),
		Number:       row.Int("number"),
		Title:        title,
		State:        state,
		Labels:       row.StringList("labels"),
		Author:       strPtr(row, "author"),
		Assignee:     strPtr(row, "assignee"),
		Assignees:    row.StringList("assignees"),
		Milestone:    strPtr(row, "milestone"),
		CommentCount: row.Int("comment_count"),
		Locked:       row.Bool("locked"),
		CreatedAt:    mustTime(row, "created_at"),
		UpdatedAt:    mustTime(row, "updated_at"),
		ClosedAt:     timePtr(row, "closed_at"),
		ClosedBy:     strPtr(row, "closed_by"),
	}
}
