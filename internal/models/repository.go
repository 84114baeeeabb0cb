package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// RepositorySchema is the single-row repository metadata table.
var RepositorySchema = tables.NewSchema("Repository",
	"repo_id",
	"owner",
	"name",
	"full_name",
	"description",
	"language",
	"default_branch",
	"stars",
	"forks",
	"watchers",
	"open_issues",
	"size",
	"is_fork",
	"created_at",
	"updated_at",
	"pushed_at",
)

// Repository holds the metadata snapshot of the mined repository.
type Repository struct {
	RepoID        int64
	Owner         string
	Name          string
	FullName      string
	Description   *string
	Language      *string
	DefaultBranch string
	Stars         int
	Forks         int
	Watchers      int
	OpenIssues    int
	Size          int
	IsFork        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PushedAt      *time.Time
}

func (r *Repository) ToRow() *tables.Row {
	row := tables.NewRow(RepositorySchema)
	row.MustSet("repo_id", r.RepoID)
	row.MustSet("owner", r.Owner)
	row.MustSet("name", r.Name)
	row.MustSet("full_name", r.FullName)
	row.MustSet("description", optString(r.Description))
	row.MustSet("language", optString(r.Language))
	row.MustSet("default_branch", r.DefaultBranch)
	row.MustSet("stars", r.Stars)
	row.MustSet("forks", r.Forks)
	row.MustSet("watchers", r.Watchers)
	row.MustSet("open_issues", r.OpenIssues)
	row.MustSet("size", r.Size)
	row.MustSet("is_fork", r.IsFork)
	row.MustSet("created_at", r.CreatedAt)
	row.MustSet("updated_at", r.UpdatedAt)
	row.MustSet("pushed_at", optTime(r.PushedAt))
	return row
}

func RepositoryFromRow(row *tables.Row) *Repository {
	owner, _ := row.String("owner")
	name, _ := row.String("name")
	fullName, _ := row.String("full_name")
	defaultBranch, _ := row.String("default_branch")
	return &Repository{
		RepoID:        row.Int64("repo_id"),
		Owner:         owner,
		Name:          name,
		FullName:      fullName,
		Description:   strPtr(row, "description"),
		Language:      strPtr(row, "language"),
		DefaultBranch: defaultBranch,
		Stars:         row.Int("stars"),
		Forks:         row.Int("forks"),
		Watchers:      row.Int("watchers"),
		OpenIssues:    row.Int("open_issues"),
		Size:          row.Int("size"),
		IsFork:        row.Bool("is_fork"),
		CreatedAt:     mustTime(row, "created_at"),
		UpdatedAt:     mustTime(row, "updated_at"),
		PushedAt:      timePtr(row, "pushed_at"),
	}
}
