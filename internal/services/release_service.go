package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
)

// ReleaseService extracts the release table.
type ReleaseService struct {
	client     *GitHubClient
	anonymizer *anonymize.Anonymizer
}

// NewReleaseService creates a release extraction service.
func NewReleaseService(client *GitHubClient, anonymizer *anonymize.Anonymizer) *ReleaseService {
	return &ReleaseService{client: client, anonymizer: anonymizer}
}

// Head peeks at the newest release. Releases are immutable once
// published, so creation time stands in for last-modified time.
func (s *ReleaseService) Head(ctx context.Context, ref tables.RepoRef) (*HeadItem, error) {
	release, err := s.client.FirstRelease(ctx, ref)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, nil
	}
	return &HeadItem{ID: release.GetID(), UpdatedAt: release.GetCreatedAt().Time.UTC()}, nil
}

// Extract fetches every release and writes the release table.
func (s *ReleaseService) Extract(ctx context.Context, ref tables.RepoRef, store *tables.Store) error {
	releases, err := s.client.ListReleases(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}

	var rows []*tables.Row
	for _, release := range releases {
		author, err := resolveUser(s.anonymizer, release.Author)
		if err != nil {
			return err
		}

		record := &models.Release{
			ID:         release.GetID(),
			TagName:    release.GetTagName(),
			Author:     author,
			Draft:      release.GetDraft(),
			Prerelease: release.GetPrerelease(),
			AssetCount: len(release.Assets),
			CreatedAt:  release.GetCreatedAt().Time.UTC(),
		}
		if release.Name != nil && *release.Name != "" {
			record.Name = release.Name
		}
		if release.PublishedAt != nil {
			t := release.PublishedAt.Time.UTC()
			record.PublishedAt = &t
		}
		rows = append(rows, record.ToRow())
	}

	return store.WriteTable(models.DirReleases, models.ReleaseSchema, rows)
}
