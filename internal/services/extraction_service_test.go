package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtractionService(t *testing.T) *ExtractionService {
	t.Helper()
	return &ExtractionService{
		ref:         tables.RepoRef{Owner: "octo", Name: "demo"},
		store:       tables.NewStore(t.TempDir()),
		updateCheck: NewUpdateCheckService(),
	}
}

func TestRunPassesIsolatesFailures(t *testing.T) {
	s := testExtractionService(t)
	extracted := false

	passes := []entityPass{
		{
			name:       "broken",
			dir:        models.DirIssues,
			schema:     models.IssueSchema,
			timeColumn: "updated_at",
			head: func(ctx context.Context) (*HeadItem, error) {
				return nil, errors.New("boom")
			},
			extract: func(ctx context.Context) error { return nil },
		},
		{
			name:       "healthy",
			dir:        models.DirReleases,
			schema:     models.ReleaseSchema,
			timeColumn: "created_at",
			head: func(ctx context.Context) (*HeadItem, error) {
				return &HeadItem{ID: 1, UpdatedAt: time.Now().UTC()}, nil
			},
			extract: func(ctx context.Context) error {
				extracted = true
				return nil
			},
		},
	}

	failed := s.runPasses(context.Background(), passes)
	assert.Equal(t, 1, failed)
	assert.True(t, extracted, "a failing pass must not stop the ones after it")
}

func TestRunPassSkipsFreshTable(t *testing.T) {
	s := testExtractionService(t)
	when := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.store.WriteTable("Checked", checkSchema, []*tables.Row{checkRow(t, 10, when)}))

	extracted := false
	pass := entityPass{
		name:       "checked",
		dir:        "Checked",
		schema:     checkSchema,
		timeColumn: "updated_at",
		head: func(ctx context.Context) (*HeadItem, error) {
			return &HeadItem{ID: 10, UpdatedAt: when}, nil
		},
		extract: func(ctx context.Context) error {
			extracted = true
			return nil
		},
	}

	require.NoError(t, s.runPass(context.Background(), pass))
	assert.False(t, extracted, "an up-to-date table must not be re-extracted")
}
