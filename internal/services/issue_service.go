package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/google/go-github/v57/github"
)

// IssueService extracts the issue tables: issues plus their comments,
// events and reactions.
type IssueService struct {
	client     *GitHubClient
	anonymizer *anonymize.Anonymizer
}

// NewIssueService creates an issue extraction service.
func NewIssueService(client *GitHubClient, anonymizer *anonymize.Anonymizer) *IssueService {
	return &IssueService{client: client, anonymizer: anonymizer}
}

// Head peeks at the most recently updated issue.
func (s *IssueService) Head(ctx context.Context, ref tables.RepoRef) (*HeadItem, error) {
	issue, err := s.client.FirstIssue(ctx, ref)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, nil
	}
	return &HeadItem{ID: issue.GetID(), UpdatedAt: issue.GetUpdatedAt().Time.UTC()}, nil
}

// Extract fetches every issue with its child records and writes the
// four issue tables.
func (s *IssueService) Extract(ctx context.Context, ref tables.RepoRef, store *tables.Store) error {
	issues, err := s.client.ListIssues(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	var issueRows, commentRows, eventRows, reactionRows []*tables.Row
	for _, issue := range issues {
		record, err := s.extractIssue(issue)
		if err != nil {
			return err
		}
		issueRows = append(issueRows, record.ToRow())

		children, err := s.extractChildren(ctx, ref, issue)
		if err != nil {
			return err
		}
		commentRows = append(commentRows, children.comments...)
		eventRows = append(eventRows, children.events...)
		reactionRows = append(reactionRows, children.reactions...)
	}

	if err := store.WriteTable(models.DirIssues, models.IssueSchema, issueRows); err != nil {
		return err
	}
	if err := store.WriteTable(models.DirIssues, models.IssueCommentSchema, commentRows); err != nil {
		return err
	}
	if err := store.WriteTable(models.DirIssues, models.IssueEventSchema, eventRows); err != nil {
		return err
	}
	return store.WriteTable(models.DirIssues, models.IssueReactionSchema, reactionRows)
}

func (s *IssueService) extractIssue(issue *github.Issue) (*models.Issue, error) {
	author, err := resolveUser(s.anonymizer, issue.User)
	if err != nil {
		return nil, err
	}
	assignee, err := resolveUser(s.anonymizer, issue.Assignee)
	if err != nil {
		return nil, err
	}
	closedBy, err := resolveUser(s.anonymizer, issue.ClosedBy)
	if err != nil {
		return nil, err
	}

	var assignees []string
	for _, u := range issue.Assignees {
		id, err := s.anonymizer.Resolve(userInfo(u))
		if err != nil {
			return nil, err
		}
		if id != "" {
			assignees = append(assignees, id)
		}
	}

	var labels []string
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	record := &models.Issue{
		ID:           issue.GetID(),
		Number:       issue.GetNumber(),
		Title:        issue.GetTitle(),
		State:        issue.GetState(),
		Labels:       labels,
		Author:       author,
		Assignee:     assignee,
		Assignees:    assignees,
		CommentCount: issue.GetComments(),
		Locked:       issue.GetLocked(),
		CreatedAt:    issue.GetCreatedAt().Time.UTC(),
		UpdatedAt:    issue.GetUpdatedAt().Time.UTC(),
		ClosedBy:     closedBy,
	}
	if issue.Milestone != nil {
		title := issue.Milestone.GetTitle()
		record.Milestone = &title
	}
	if issue.ClosedAt != nil {
		t := issue.ClosedAt.Time.UTC()
		record.ClosedAt = &t
	}
	return record, nil
}

type issueChildren struct {
	comments  []*tables.Row
	events    []*tables.Row
	reactions []*tables.Row
}

func (s *IssueService) extractChildren(ctx context.Context, ref tables.RepoRef, issue *github.Issue) (*issueChildren, error) {
	children := &issueChildren{}
	number := issue.GetNumber()

	comments, err := s.client.ListIssueComments(ctx, ref, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of issue #%d: %w", number, err)
	}
	for _, comment := range comments {
		author, err := resolveUser(s.anonymizer, comment.User)
		if err != nil {
			return nil, err
		}
		record := &models.Comment{
			ID:        comment.GetID(),
			ParentID:  issue.GetID(),
			Author:    author,
			Body:      comment.GetBody(),
			CreatedAt: comment.GetCreatedAt().Time.UTC(),
			UpdatedAt: comment.GetUpdatedAt().Time.UTC(),
		}
		if comment.Reactions != nil {
			record.ReactionCount = comment.Reactions.GetTotalCount()
		}
		row, err := record.ToRow(models.ParentIssue)
		if err != nil {
			return nil, err
		}
		children.comments = append(children.comments, row)
	}

	events, err := s.client.ListIssueEvents(ctx, ref, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of issue #%d: %w", number, err)
	}
	for _, event := range events {
		author, err := resolveUser(s.anonymizer, event.Actor)
		if err != nil {
			return nil, err
		}
		assignee, err := resolveUser(s.anonymizer, event.Assignee)
		if err != nil {
			return nil, err
		}
		assigner, err := resolveUser(s.anonymizer, event.Assigner)
		if err != nil {
			return nil, err
		}
		record := &models.Event{
			ID:        event.GetID(),
			ParentID:  issue.GetID(),
			Event:     event.GetEvent(),
			Author:    author,
			Assignee:  assignee,
			Assigner:  assigner,
			CreatedAt: event.GetCreatedAt().Time.UTC(),
		}
		if event.Label != nil {
			name := event.Label.GetName()
			record.Label = &name
		}
		row, err := record.ToRow(models.ParentIssue)
		if err != nil {
			return nil, err
		}
		children.events = append(children.events, row)
	}

	reactions, err := s.client.ListIssueReactions(ctx, ref, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions of issue #%d: %w", number, err)
	}
	for _, reaction := range reactions {
		author, err := resolveUser(s.anonymizer, reaction.User)
		if err != nil {
			return nil, err
		}
		record := &models.Reaction{
			ID:       reaction.GetID(),
			ParentID: issue.GetID(),
			Content:  reaction.GetContent(),
			Author:   author,
		}
		row, err := record.ToRow(models.ParentIssue)
		if err != nil {
			return nil, err
		}
		children.reactions = append(children.reactions, row)
	}

	return children, nil
}
