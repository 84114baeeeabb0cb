package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// PullRequestSchema is the pull request table.
var PullRequestSchema = tables.NewSchema("PullRequests",
	"id",
	"number",
	"title",
	"state",
	"labels",
	"author",
	"assignees",
	"milestone",
	"draft",
	"merged",
	"merged_at",
	"merged_by",
	"merge_commit_sha",
	"closed_at",
	"base_ref",
	"head_ref",
	"additions",
	"deletions",
	"changed_files",
	"commit_count",
	"review_comment_count",
	"comment_count",
	"created_at",
	"updated_at",
)

// PullRequest is one extracted pull request record.
type PullRequest struct {
	ID                 int64
	Number             int
	Title              string
	State              string
	Labels             []string
	Author             *string
	Assignees          []string
	Milestone          *string
	Draft              bool
	Merged             bool
	MergedAt           *time.Time
	MergedBy           *string
	MergeCommitSHA     *string
	ClosedAt           *time.Time
	BaseRef            string
	HeadRef            string
	Additions          int
	Deletions          int
	ChangedFiles       int
	CommitCount        int
	ReviewCommentCount int
	CommentCount       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *PullRequest) ToRow() *tables.Row {
	row := tables.NewRow(PullRequestSchema)
	row.MustSet("id", p.ID)
	row.MustSet("number", p.Number)
	row.MustSet("title", p.Title)
	row.MustSet("state", p.State)
	row.MustSet("labels", p.Labels)
	row.MustSet("author", optString(p.Author))
	row.MustSet("assignees", p.Assignees)
	row.MustSet("milestone", optString(p.Milestone))
	row.MustSet("draft", p.Draft)
	row.MustSet("merged", p.Merged)
	row.MustSet("merged_at", optTime(p.MergedAt))
	row.MustSet("merged_by", optString(p.MergedBy))
	row.MustSet("merge_commit_sha", optString(p.MergeCommitSHA))
	row.MustSet("closed_at", optTime(p.ClosedAt))
	row.MustSet("base_ref", p.BaseRef)
	row.MustSet("head_ref", p.HeadRef)
	row.MustSet("additions", p.Additions)
	row.MustSet("deletions", p.Deletions)
	row.MustSet("changed_files", p.ChangedFiles)
	row.MustSet("commit_count", p.CommitCount)
	row.MustSet("review_comment_count", p.ReviewCommentCount)
	row.MustSet("comment_count", p.CommentCount)
	row.MustSet("created_at", p.CreatedAt)
	row.MustSet("updated_at", p.UpdatedAt)
	return row
}

func PullRequestFromRow(row *tables.Row) *PullRequest {
	title, _ := row.String("title")
	state, _ := row.String("state")
	baseRef, _ := row.String("base_ref")
	headRef, _ := row.String("head_ref")
	return &PullRequest{
		ID:                 row.Int64("id"),
		Number:             row.Int("number"),
		Title:              title,
		State:              state,
		Labels:             row.StringList("labels"),
		Author:             strPtr(row, "author"),
		Assignees:          row.StringList("assignees"),
		Milestone:          strPtr(row, "milestone"),
		Draft:              row.Bool("draft"),
		Merged:             row.Bool("merged"),
		MergedAt:           timePtr(row, "merged_at"),
		MergedBy:           strPtr(row, "merged_by"),
		MergeCommitSHA:     strPtr(row, "merge_commit_sha"),
		ClosedAt:           timePtr(row, "closed_at"),
		BaseRef:            baseRef,
		HeadRef:            headRef,
		Additions:          row.Int("additions"),
		Deletions:          row.Int("deletions"),
		ChangedFiles:       row.Int("changed_files"),
		CommitCount:        row.Int("commit_count"),
		ReviewCommentCount: row.Int("review_comment_count"),
		CommentCount:       row.Int("comment_count"),
		CreatedAt:          mustTime(row, "created_at"),
		UpdatedAt:          mustTime(row, "updated_at"),
	}
}
