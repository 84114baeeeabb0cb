package services

import (
	"context"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/alimgiray/ghminer/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ExtractionService runs one full extraction session for one
// repository: every entity type in sequence, each pass short-circuited
// by the update check and isolated from the others' failures. Tables
// are only replaced after a pass has built its full record list, so a
// failed pass leaves the previous successful output untouched. The
// user table is the exception: it grows write-through during a pass
// and is not rolled back, which is safe because an identity nothing
// references is harmless.
type ExtractionService struct {
	ref         tables.RepoRef
	store       *tables.Store
	anonymizer  *anonymize.Anonymizer
	updateCheck *UpdateCheckService

	repoService    *RepositoryService
	issueService   *IssueService
	prService      *PullRequestService
	releaseService *ReleaseService
	wfService      *WorkflowService
	gitService     *GitService
	commitService  *CommitService

	githubToken string
}

// NewExtractionService wires an extraction session for one repository.
func NewExtractionService(
	ref tables.RepoRef,
	store *tables.Store,
	anonymizer *anonymize.Anonymizer,
	client *GitHubClient,
	gitService *GitService,
	githubToken string,
) *ExtractionService {
	return &ExtractionService{
		ref:            ref,
		store:          store,
		anonymizer:     anonymizer,
		updateCheck:    NewUpdateCheckService(),
		repoService:    NewRepositoryService(client),
		issueService:   NewIssueService(client, anonymizer),
		prService:      NewPullRequestService(client, anonymizer),
		releaseService: NewReleaseService(client, anonymizer),
		wfService:      NewWorkflowService(client, anonymizer),
		gitService:     gitService,
		commitService:  NewCommitService(anonymizer),
		githubToken:    githubToken,
	}
}

// entityPass describes one entity type's extraction: the head peek
// used by the update check, the table the check compares against, and
// the full extraction.
type entityPass struct {
	name       string
	dir        string
	schema     *tables.Schema
	timeColumn string
	head       func(ctx context.Context) (*HeadItem, error)
	extract    func(ctx context.Context) error
}

// Run executes every entity pass in sequence. A pass that fails is
// logged and skipped; the session continues with the remaining entity
// types and reports the number of failed passes.
func (s *ExtractionService) Run(ctx context.Context) int {
	failed := s.runPasses(ctx, s.entityPasses())

	if err := s.runGitPass(ctx); err != nil {
		logger.WithFields(logrus.Fields{
			"repository": s.ref.FullName(),
			"entity":     "commits",
		}).WithError(err).Error("extraction pass failed")
		failed++
	}

	return failed
}

func (s *ExtractionService) entityPasses() []entityPass {
	return []entityPass{
		{
			name:       "repository",
			dir:        models.DirRepository,
			schema:     models.RepositorySchema,
			timeColumn: "updated_at",
			head:       func(ctx context.Context) (*HeadItem, error) { return s.repoService.Head(ctx, s.ref) },
			extract:    func(ctx context.Context) error { return s.repoService.Extract(ctx, s.ref, s.store) },
		},
		{
			name:       "issues",
			dir:        models.DirIssues,
			schema:     models.IssueSchema,
			timeColumn: "updated_at",
			head:       func(ctx context.Context) (*HeadItem, error) { return s.issueService.Head(ctx, s.ref) },
			extract:    func(ctx context.Context) error { return s.issueService.Extract(ctx, s.ref, s.store) },
		},
		{
			name:       "pull_requests",
			dir:        models.DirPullRequests,
			schema:     models.PullRequestSchema,
			timeColumn: "updated_at",
			head:       func(ctx context.Context) (*HeadItem, error) { return s.prService.Head(ctx, s.ref) },
			extract:    func(ctx context.Context) error { return s.prService.Extract(ctx, s.ref, s.store) },
		},
		{
			name:       "releases",
			dir:        models.DirReleases,
			schema:     models.ReleaseSchema,
			timeColumn: "created_at",
			head:       func(ctx context.Context) (*HeadItem, error) { return s.releaseService.Head(ctx, s.ref) },
			extract:    func(ctx context.Context) error { return s.releaseService.Extract(ctx, s.ref, s.store) },
		},
		{
			name:       "workflows",
			dir:        models.DirWorkflows,
			schema:     models.WorkflowRunSchema,
			timeColumn: "updated_at",
			head:       func(ctx context.Context) (*HeadItem, error) { return s.wfService.Head(ctx, s.ref) },
			extract:    func(ctx context.Context) error { return s.wfService.Extract(ctx, s.ref, s.store) },
		},
	}
}

func (s *ExtractionService) runPasses(ctx context.Context, passes []entityPass) int {
	failed := 0
	for _, pass := range passes {
		if err := s.runPass(ctx, pass); err != nil {
			logger.WithFields(logrus.Fields{
				"repository": s.ref.FullName(),
				"entity":     pass.name,
			}).WithError(err).Error("extraction pass failed")
			failed++
		}
	}
	return failed
}

func (s *ExtractionService) runPass(ctx context.Context, pass entityPass) error {
	head, err := pass.head(ctx)
	if err != nil {
		return err
	}

	previous, err := s.store.ReadTable(pass.dir, pass.schema)
	if err != nil {
		return err
	}

	if !s.updateCheck.NeedsRefresh(head, previous, pass.timeColumn) {
		logger.WithFields(logrus.Fields{
			"repository": s.ref.FullName(),
			"entity":     pass.name,
		}).Info("no new data, skipping extraction")
		return nil
	}

	logger.WithFields(logrus.Fields{
		"repository": s.ref.FullName(),
		"entity":     pass.name,
	}).Info("extracting")
	return pass.extract(ctx)
}

// runGitPass mines the local clone. There is no cheap remote head for
// the mined tables; the clone pull itself is the freshness check.
func (s *ExtractionService) runGitPass(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.gitService.CloneOrUpdate(s.ref, s.githubToken)
	if err != nil {
		return err
	}

	commits, edits, branches, err := s.gitService.Mine(path)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"repository": s.ref.FullName(),
		"commits":    len(commits),
		"edits":      len(edits),
		"branches":   len(branches),
	}).Info("mined local history")
	return s.commitService.Extract(s.store, commits, edits, branches)
}
