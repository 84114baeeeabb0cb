package models

import (
	"fmt"
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// Table directories under a repository's data directory.
const (
	DirRepository   = "Repository"
	DirIssues       = "Issues"
	DirPullRequests = "PullRequests"
	DirReleases     = "Releases"
	DirWorkflows    = "Workflows"
	DirGit          = "Git"
)

// ParentType names the entity a child record (comment, event,
// reaction, review) hangs off. Each child type accepts a fixed set of
// parents; the per-parent schemas are built once at package init, so
// the column list of one variant can never leak into another.
type ParentType string

const (
	ParentIssue       ParentType = "issue"
	ParentPullRequest ParentType = "pull_request"
)

// childSchema prefixes the parent foreign-key column onto a child
// table's columns.
func childSchema(table string, parent ParentType, columns ...string) *tables.Schema {
	cols := append([]string{"id", string(parent) + "_id"}, columns...)
	return tables.NewSchema(table, cols...)
}

// optString converts a nullable string into a row cell.
func optString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// optTime converts a nullable timestamp into a row cell.
func optTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// strPtr reads a nullable string column.
func strPtr(row *tables.Row, column string) *string {
	if s, ok := row.String(column); ok {
		return &s
	}
	return nil
}

// timePtr reads a nullable timestamp column.
func timePtr(row *tables.Row, column string) *time.Time {
	if t, ok := row.Time(column); ok {
		return &t
	}
	return nil
}

// mustTime reads a required timestamp column, zero time when missing.
func mustTime(row *tables.Row, column string) time.Time {
	t, _ := row.Time(column)
	return t
}

func badParent(child string, parent ParentType) error {
	return fmt.Errorf("%s records cannot be attached to parent type %q", child, parent)
}
