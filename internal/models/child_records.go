package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// Child record schemas, one precomputed variant per permitted parent
// type. Comments, events and reactions attach to issues or pull
// requests; reviews only to pull requests.
var (
	IssueCommentSchema       = childSchema("Comments", ParentIssue, commentColumns...)
	PullRequestCommentSchema = childSchema("Comments", ParentPullRequest, commentColumns...)

	IssueEventSchema       = childSchema("Events", ParentIssue, eventColumns...)
	PullRequestEventSchema = childSchema("Events", ParentPullRequest, eventColumns...)

	IssueReactionSchema       = childSchema("Reactions", ParentIssue, reactionColumns...)
	PullRequestReactionSchema = childSchema("Reactions", ParentPullRequest, reactionColumns...)

	ReviewSchema = childSchema("Reviews", ParentPullRequest, reviewColumns...)
)

var (
	commentColumns  = []string{"author", "body", "reaction_count", "created_at", "updated_at"}
	eventColumns    = []string{"event", "author", "assignee", "assigner", "label", "created_at"}
	reactionColumns = []string{"content", "author"}
	reviewColumns   = []string{"author", "state", "body", "submitted_at"}
)

// CommentSchemaFor selects the comment schema variant for a parent type.
func CommentSchemaFor(parent ParentType) (*tables.Schema, error) {
	switch parent {
	case ParentIssue:
		return IssueCommentSchema, nil
	case ParentPullRequest:
		return PullRequestCommentSchema, nil
	default:
		return nil, badParent("comment", parent)
	}
}

// EventSchemaFor selects the event schema variant for a parent type.
func EventSchemaFor(parent ParentType) (*tables.Schema, error) {
	switch parent {
	case ParentIssue:
		return IssueEventSchema, nil
	case ParentPullRequest:
		return PullRequestEventSchema, nil
	default:
		return nil, badParent("event", parent)
	}
}

// ReactionSchemaFor selects the reaction schema variant for a parent type.
func ReactionSchemaFor(parent ParentType) (*tables.Schema, error) {
	switch parent {
	case ParentIssue:
		return IssueReactionSchema, nil
	case ParentPullRequest:
		return PullRequestReactionSchema, nil
	default:
		return nil, badParent("reaction", parent)
	}
}

// Comment is one issue or pull request comment.
type Comment struct {
	ID            int64
	ParentID      int64
	Author        *string
	Body          string
	ReactionCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c *Comment) ToRow(parent ParentType) (*tables.Row, error) {
	schema, err := CommentSchemaFor(parent)
	if err != nil {
		return nil, err
	}
	row := tables.NewRow(schema)
	row.MustSet("id", c.ID)
	row.MustSet(string(parent)+"_id", c.ParentID)
	row.MustSet("author", optString(c.Author))
	row.MustSet("body", c.Body)
	row.MustSet("reaction_count", c.ReactionCount)
	row.MustSet("created_at", c.CreatedAt)
	row.MustSet("updated_at", c.UpdatedAt)
	return row, nil
}

// Event is one timeline event on an issue or pull request.
type Event struct {
	ID        int64
	ParentID  int64
	Event     string
	Author    *string
	Assignee  *string
	Assigner  *string
	Label     *string
	CreatedAt time.Time
}

func (e *Event) ToRow(parent ParentType) (*tables.Row, error) {
	schema, err := EventSchemaFor(parent)
	if err != nil {
		return nil, err
	}
	row := tables.NewRow(schema)
	row.MustSet("id", e.ID)
	row.MustSet(string(parent)+"_id", e.ParentID)
	row.MustSet("event", e.Event)
	row.MustSet("author", optString(e.Author))
	row.MustSet("assignee", optString(e.Assignee))
	row.MustSet("assigner", optString(e.Assigner))
	row.MustSet("label", optString(e.Label))
	row.MustSet("created_at", e.CreatedAt)
	return row, nil
}

// Reaction is one emoji reaction on an issue, pull request or comment.
// The API exposes no timestamp on reactions.
type Reaction struct {
	ID       int64
	ParentID int64
	Content  string
	Author   *string
}

func (r *Reaction) ToRow(parent ParentType) (*tables.Row, error) {
	schema, err := ReactionSchemaFor(parent)
	if err != nil {
		return nil, err
	}
	row := tables.NewRow(schema)
	row.MustSet("id", r.ID)
	row.MustSet(string(parent)+"_id", r.ParentID)
	row.MustSet("content", r.Content)
	row.MustSet("author", optString(r.Author))
	return row, nil
}

// Review is one pull request review.
type Review struct {
	ID            int64
	PullRequestID int64
	Author        *string
	State         string
	Body          *string
	SubmittedAt   *time.Time
}

func (r *Review) ToRow() *tables.Row {
	row := tables.NewRow(ReviewSchema)
	row.MustSet("id", r.ID)
	row.MustSet("pull_request_id", r.PullRequestID)
	row.MustSet("author", optString(r.Author))
	row.MustSet("state", r.State)
	row.MustSet("body", optString(r.Body))
	row.MustSet("submitted_at", optTime(r.SubmittedAt))
	return row
}
