package models

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// ReleaseSchema is the release table.
var ReleaseSchema = tables.NewSchema("Releases",
	"id",
	"tag_name",
	"name",
	"author",
	"draft",
	"prerelease",
	"asset_count",
	"created_at",
	"published_at",
)

// Release is one extracted release record.
type Release struct {
	ID          int64
	TagName     string
	Name        *string
	Author      *string
	Draft       bool
	Prerelease  bool
	AssetCount  int
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (r *Release) ToRow() *tables.Row {
	row := tables.NewRow(ReleaseSchema)
	row.MustSet("id", r.ID)
	row.MustSet("tag_name", r.TagName)
	row.MustSet("name", optString(r.Name))
	row.MustSet("author", optString(r.Author))
	row.MustSet("draft", r.Draft)
	row.MustSet("prerelease", r.Prerelease)
	row.MustSet("asset_count", r.AssetCount)
	row.MustSet("created_at", r.CreatedAt)
	row.MustSet("published_at", optTime(r.PublishedAt))
	return row
}
