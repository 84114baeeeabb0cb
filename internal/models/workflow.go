package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// WorkflowSchema is the workflow definition table.
var WorkflowSchema = tables.NewSchema("Workflows",
	"id",
	"name",
	"path",
	"state",
	"created_at",
	"updated_at",
)

// WorkflowRunSchema is the workflow run table.
var WorkflowRunSchema = tables.NewSchema("Runs",
	"id",
	"workflow_id",
	"run_number",
	"event",
	"status",
	"conclusion",
	"branch",
	"commit_sha",
	"author",
	"created_at",
	"updated_at",
)

// Workflow is one Actions workflow definition.
type Workflow struct {
	ID        int64
	Name      string
	Path      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (w *Workflow) ToRow() *tables.Row {
	row := tables.NewRow(WorkflowSchema)
	row.MustSet("id", w.ID)
	row.MustSet("name", w.Name)
	row.MustSet("path", w.Path)
	row.MustSet("state", w.State)
	row.MustSet("created_at", w.CreatedAt)
	row.MustSet("updated_at", w.UpdatedAt)
	return row
}

// WorkflowRun is one execution of a workflow.
type WorkflowRun struct {
	ID         int64
	WorkflowID int64
	RunNumber  int
	Event      string
	Status     string
	Conclusion *string
	Branch     *string
	CommitSHA  string
	Author     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r *WorkflowRun) ToRow() *tables.Row {
	row := tables.NewRow(WorkflowRunSchema)
	row.MustSet("id", r.ID)
	row.MustSet("workflow_id", r.WorkflowID)
	row.MustSet("run_number", r.RunNumber)
	row.MustSet("event", r.Event)
	row.MustSet("status", r.Status)
	row.MustSet("conclusion", optString(r.Conclusion))
	row.MustSet("branch", optString(r.Branch))
	row.MustSet("commit_sha", r.CommitSHA)
	row.MustSet("author", optString(r.Author))
	row.MustSet("created_at", r.CreatedAt)
	row.MustSet("updated_at", r.UpdatedAt)
	return row
}
