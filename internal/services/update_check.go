package services

import (
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// HeadItem is the single-item peek at a remote collection sorted by
// last update, newest first: the id and last-modified timestamp of the
// most recently changed record. A nil head means the collection is
// empty.
type HeadItem struct {
	ID        int64
	UpdatedAt time.Time
}

// UpdateCheckService decides whether an entity type needs a full
// re-extraction pass without fetching the whole remote collection.
//
// The check only looks at the head of the remote collection. A change
// that does not surface in the most recently updated record is not
// detected until something newer changes. An edit to an old comment
// that does not bump its parent is one such case. That blind spot is
// the accepted price of a single-request check; callers rely on it
// staying this cheap.
type UpdateCheckService struct{}

// NewUpdateCheckService creates an update check service.
func NewUpdateCheckService() *UpdateCheckService {
	return &UpdateCheckService{}
}

// NeedsRefresh reports whether the previously persisted table is stale
// against the remote head. timeColumn names the table's last-modified
// column. With no previous table, any remote data at all is new. With
// a previous table, the head's timestamp is compared against the
// stored row with the same id, or, for tables without an id column,
// against the newest stored timestamp.
func (s *UpdateCheckService) NeedsRefresh(head *HeadItem, previous []*tables.Row, timeColumn string) bool {
	if len(previous) == 0 {
		return head != nil
	}
	if head == nil {
		return false
	}

	if previous[0].Schema().Has("id") {
		for _, row := range previous {
			if row.Int64("id") != head.ID {
				continue
			}
			stored, ok := row.Time(timeColumn)
			return !ok || !stored.Equal(head.UpdatedAt)
		}
		// The head record was never extracted before.
		return true
	}

	var newest time.Time
	for _, row := range previous {
		if stored, ok := row.Time(timeColumn); ok && stored.After(newest) {
			newest = stored
		}
	}
	return !newest.Equal(head.UpdatedAt)
}
