package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/google/go-github/v57/github"
)

// PullRequestService extracts the pull request tables: pull requests,
// their reviews and their review comments.
type PullRequestService struct {
	client     *GitHubClient
	anonymizer *anonymize.Anonymizer
}

// NewPullRequestService creates a pull request extraction service.
func NewPullRequestService(client *GitHubClient, anonymizer *anonymize.Anonymizer) *PullRequestService {
	return &PullRequestService{client: client, anonymizer: anonymizer}
}

// Head peeks at the most recently updated pull request.
func (s *PullRequestService) Head(ctx context.Context, ref tables.RepoRef) (*HeadItem, error) {
	pr, err := s.client.FirstPullRequest(ctx, ref)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, nil
	}
	return &HeadItem{ID: pr.GetID(), UpdatedAt: pr.GetUpdatedAt().Time.UTC()}, nil
}

// Extract fetches every pull request with its child records and writes
// the three pull request tables.
func (s *PullRequestService) Extract(ctx context.Context, ref tables.RepoRef, store *tables.Store) error {
	prs, err := s.client.ListPullRequests(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to list pull requests: %w", err)
	}

	var prRows, reviewRows, commentRows []*tables.Row
	for _, listed := range prs {
		// The list endpoint leaves diff statistics empty.
		pr, err := s.client.GetPullRequest(ctx, ref, listed.GetNumber())
		if err != nil {
			return fmt.Errorf("failed to get pull request #%d: %w", listed.GetNumber(), err)
		}

		record, err := s.extractPullRequest(pr)
		if err != nil {
			return err
		}
		prRows = append(prRows, record.ToRow())

		reviews, comments, err := s.extractChildren(ctx, ref, pr)
		if err != nil {
			return err
		}
		reviewRows = append(reviewRows, reviews...)
		commentRows = append(commentRows, comments...)
	}

	if err := store.WriteTable(models.DirPullRequests, models.PullRequestSchema, prRows); err != nil {
		return err
	}
	if err := store.WriteTable(models.DirPullRequests, models.ReviewSchema, reviewRows); err != nil {
		return err
	}
	return store.WriteTable(models.DirPullRequests, models.PullRequestCommentSchema, commentRows)
}

func (s *PullRequestService) extractPullRequest(pr *github.PullRequest) (*models.PullRequest, error) {
	author, err := resolveUser(s.anonymizer, pr.User)
	if err != nil {
		return nil, err
	}
	mergedBy, err := resolveUser(s.anonymizer, pr.MergedBy)
	if err != nil {
		return nil, err
	}

	var assignees []string
	for _, u := range pr.Assignees {
		id, err := s.anonymizer.Resolve(userInfo(u))
		if err != nil {
			return nil, err
		}
		if id != "" {
			assignees = append(assignees, id)
		}
	}

	var labels []string
	for _, label := range pr.Labels {
		labels = append(labels, label.GetName())
	}

	record := &models.PullRequest{
		ID:                 pr.GetID(),
		Number:             pr.GetNumber(),
		Title:              pr.GetTitle(),
		State:              pr.GetState(),
		Labels:             labels,
		Author:             author,
		Assignees:          assignees,
		Draft:              pr.GetDraft(),
		Merged:             pr.GetMerged(),
		MergedBy:           mergedBy,
		BaseRef:            pr.GetBase().GetRef(),
		HeadRef:            pr.GetHead().GetRef(),
		Additions:          pr.GetAdditions(),
		Deletions:          pr.GetDeletions(),
		ChangedFiles:       pr.GetChangedFiles(),
		CommitCount:        pr.GetCommits(),
		ReviewCommentCount: pr.GetReviewComments(),
		CommentCount:       pr.GetComments(),
		CreatedAt:          pr.GetCreatedAt().Time.UTC(),
		UpdatedAt:          pr.GetUpdatedAt().Time.UTC(),
	}
	if pr.Milestone != nil {
		title := pr.Milestone.GetTitle()
		record.Milestone = &title
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time.UTC()
		record.MergedAt = &t
	}
	if pr.MergeCommitSHA != nil {
		record.MergeCommitSHA = pr.MergeCommitSHA
	}
	if pr.ClosedAt != nil {
		t := pr.ClosedAt.Time.UTC()
		record.ClosedAt = &t
	}
	return record, nil
}

func (s *PullRequestService) extractChildren(ctx context.Context, ref tables.RepoRef, pr *github.PullRequest) ([]*tables.Row, []*tables.Row, error) {
	number := pr.GetNumber()

	reviews, err := s.client.ListReviews(ctx, ref, number)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list reviews of pull request #%d: %w", number, err)
	}
	var reviewRows []*tables.Row
	for _, review := range reviews {
		author, err := resolveUser(s.anonymizer, review.User)
		if err != nil {
			return nil, nil, err
		}
		record := &models.Review{
			ID:            review.GetID(),
			PullRequestID: pr.GetID(),
			Author:        author,
			State:         review.GetState(),
		}
		if review.Body != nil && *review.Body != "" {
			record.Body = review.Body
		}
		if review.SubmittedAt != nil {
			t := review.SubmittedAt.Time.UTC()
			record.SubmittedAt = &t
		}
		reviewRows = append(reviewRows, record.ToRow())
	}

	comments, err := s.client.ListPullRequestComments(ctx, ref, number)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments of pull request #%d: %w", number, err)
	}
	var commentRows []*tables.Row
	for _, comment := range comments {
		author, err := resolveUser(s.anonymizer, comment.User)
		if err != nil {
			return nil, nil, err
		}
		record := &models.Comment{
			ID:        comment.GetID(),
			ParentID:  pr.GetID(),
			Author:    author,
			Body:      comment.GetBody(),
			CreatedAt: comment.GetCreatedAt().Time.UTC(),
			UpdatedAt: comment.GetUpdatedAt().Time.UTC(),
		}
		if comment.Reactions != nil {
			record.ReactionCount = comment.Reactions.GetTotalCount()
		}
		row, err := record.ToRow(models.ParentPullRequest)
		if err != nil {
			return nil, nil, err
		}
		commentRows = append(commentRows, row)
	}

	return reviewRows, commentRows, nil
}
