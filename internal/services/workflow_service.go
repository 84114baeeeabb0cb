package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
)

// WorkflowService extracts the Actions tables: workflow definitions
// and their runs.
type WorkflowService struct {
	client     *GitHubClient
	anonymizer *anonymize.Anonymizer
}

// NewWorkflowService creates a workflow extraction service.
func NewWorkflowService(client *GitHubClient, anonymizer *anonymize.Anonymizer) *WorkflowService {
	return &WorkflowService{client: client, anonymizer: anonymizer}
}

// Head peeks at the most recent workflow run; run activity is what
// changes between extraction passes.
func (s *WorkflowService) Head(ctx context.Context, ref tables.RepoRef) (*HeadItem, error) {
	run, err := s.client.FirstWorkflowRun(ctx, ref)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}
	return &HeadItem{ID: run.GetID(), UpdatedAt: run.GetUpdatedAt().Time.UTC()}, nil
}

// Extract fetches every workflow and run and writes both tables.
func (s *WorkflowService) Extract(ctx context.Context, ref tables.RepoRef, store *tables.Store) error {
	workflows, err := s.client.ListWorkflows(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	var workflowRows []*tables.Row
	for _, workflow := range workflows {
		record := &models.Workflow{
			ID:        workflow.GetID(),
			Name:      workflow.GetName(),
			Path:      workflow.GetPath(),
			State:     workflow.GetState(),
			CreatedAt: workflow.GetCreatedAt().Time.UTC(),
			UpdatedAt: workflow.GetUpdatedAt().Time.UTC(),
		}
		workflowRows = append(workflowRows, record.ToRow())
	}

	runs, err := s.client.ListWorkflowRuns(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to list workflow runs: %w", err)
	}

	var runRows []*tables.Row
	for _, run := range runs {
		author, err := resolveUser(s.anonymizer, run.Actor)
		if err != nil {
			return err
		}

		record := &models.WorkflowRun{
			ID:         run.GetID(),
			WorkflowID: run.GetWorkflowID(),
			RunNumber:  run.GetRunNumber(),
			Event:      run.GetEvent(),
			Status:     run.GetStatus(),
			CommitSHA:  run.GetHeadSHA(),
			Author:     author,
			CreatedAt:  run.GetCreatedAt().Time.UTC(),
			UpdatedAt:  run.GetUpdatedAt().Time.UTC(),
		}
		if run.Conclusion != nil {
			record.Conclusion = run.Conclusion
		}
		if run.HeadBranch != nil {
			record.Branch = run.HeadBranch
		}
		runRows = append(runRows, record.ToRow())
	}

	if err := store.WriteTable(models.DirWorkflows, models.WorkflowSchema, workflowRows); err != nil {
		return err
	}
	return store.WriteTable(models.DirWorkflows, models.WorkflowRunSchema, runRows)
}
