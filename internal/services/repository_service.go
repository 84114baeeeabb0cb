package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
)

// RepositoryService extracts the single-row repository metadata table.
type RepositoryService struct {
	client *GitHubClient
}

// NewRepositoryService creates a repository extraction service.
func NewRepositoryService(client *GitHubClient) *RepositoryService {
	return &RepositoryService{client: client}
}

// Head returns the repository's last update time. The metadata table
// has no id column, so the update check compares against the newest
// stored timestamp.
func (s *RepositoryService) Head(ctx context.Context, ref tables.RepoRef) (*HeadItem, error) {
	repo, err := s.client.GetRepository(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &HeadItem{ID: repo.GetID(), UpdatedAt: repo.GetUpdatedAt().Time.UTC()}, nil
}

// Extract fetches the repository metadata and writes its table.
func (s *RepositoryService) Extract(ctx context.Context, ref tables.RepoRef, store *tables.Store) error {
	repo, err := s.client.GetRepository(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to get repository: %w", err)
	}

	record := &models.Repository{
		RepoID:        repo.GetID(),
		Owner:         ref.Owner,
		Name:          ref.Name,
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Watchers:      repo.GetSubscribersCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		Size:          repo.GetSize(),
		IsFork:        repo.GetFork(),
		CreatedAt:     repo.GetCreatedAt().Time.UTC(),
		UpdatedAt:     repo.GetUpdatedAt().Time.UTC(),
	}
	if repo.Description != nil && *repo.Description != "" {
		record.Description = repo.Description
	}
	if repo.Language != nil {
		record.Language = repo.Language
	}
	if repo.PushedAt != nil {
		t := repo.PushedAt.Time.UTC()
		record.PushedAt = &t
	}

	return store.WriteTable(models.DirRepository, models.RepositorySchema, []*tables.Row{record.ToRow()})
}
