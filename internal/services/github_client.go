package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/alimgiray/ghminer/pkg/logger"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// GitHubClient wraps the GitHub API client with request pacing and
// rate-limit recovery. Every listing method requests the collection
// sorted by last update, newest first; the update check depends on
// that ordering.
type GitHubClient struct {
	client  *github.Client
	limiter *rate.Limiter
	perPage int
}

// NewGitHubClient creates a client authenticated with the given token.
// requestsPerHour caps the client-side request rate below the API quota.
func NewGitHubClient(token string, requestsPerHour, perPage int) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	if requestsPerHour <= 0 {
		requestsPerHour = 5000
	}
	if perPage <= 0 {
		perPage = 100
	}

	return &GitHubClient{
		client:  github.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 1),
		perPage: perPage,
	}
}

// do runs one API call behind the pacer. A rate-limit rejection is
// never surfaced: the client sleeps until the quota resets and retries
// the identical call.
func (c *GitHubClient) do(ctx context.Context, call func() (*github.Response, error)) (*github.Response, error) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := call()
		if err == nil {
			return resp, nil
		}

		var rateErr *github.RateLimitError
		if !errors.As(err, &rateErr) {
			return resp, err
		}

		delay := time.Until(rateErr.Rate.Reset.Time)
		if delay < 0 {
			delay = time.Second
		}
		logger.Warnf("GitHub rate limit hit, waiting %s until reset", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// GetRepository fetches the repository metadata.
func (c *GitHubClient) GetRepository(ctx context.Context, ref tables.RepoRef) (*github.Repository, error) {
	var repo *github.Repository
	_, err := c.do(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		repo, resp, err = c.client.Repositories.Get(ctx, ref.Owner, ref.Name)
		return resp, err
	})
	return repo, err
}

// ListIssues fetches every issue of the repository, newest-updated
// first. Pull requests surfaced by the issues endpoint are skipped.
func (c *GitHubClient) ListIssues(ctx context.Context, ref tables.RepoRef) ([]*github.Issue, error) {
	opt := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	var all []*github.Issue
	for {
		var issues []*github.Issue
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			issues, resp, err = c.client.Issues.ListByRepo(ctx, ref.Owner, ref.Name, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, issue)
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// FirstIssue peeks at the most recently updated issue with a single
// one-item page.
func (c *GitHubClient) FirstIssue(ctx context.Context, ref tables.RepoRef) (*github.Issue, error) {
	opt := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	}

	for {
		var issues []*github.Issue
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			issues, resp, err = c.client.Issues.ListByRepo(ctx, ref.Owner, ref.Name, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			if !issue.IsPullRequest() {
				return issue, nil
			}
		}
		if resp.NextPage == 0 {
			return nil, nil
		}
		opt.Page = resp.NextPage
	}
}

// ListIssueComments fetches the comments of one issue.
func (c *GitHubClient) ListIssueComments(ctx context.Context, ref tables.RepoRef, number int) ([]*github.IssueComment, error) {
	opt := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	var all []*github.IssueComment
	for {
		var comments []*github.IssueComment
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			comments, resp, err = c.client.Issues.ListComments(ctx, ref.Owner, ref.Name, number, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, comments...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListIssueEvents fetches the timeline events of one issue.
func (c *GitHubClient) ListIssueEvents(ctx context.Context, ref tables.RepoRef, number int) ([]*github.IssueEvent, error) {
	opt := &github.ListOptions{PerPage: c.perPage}

	var all []*github.IssueEvent
	for {
		var events []*github.IssueEvent
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			events, resp, err = c.client.Issues.ListIssueEvents(ctx, ref.Owner, ref.Name, number, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListIssueReactions fetches the reactions on one issue.
func (c *GitHubClient) ListIssueReactions(ctx context.Context, ref tables.RepoRef, number int) ([]*github.Reaction, error) {
	opt := &github.ListOptions{PerPage: c.perPage}

	var all []*github.Reaction
	for {
		var reactions []*github.Reaction
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			reactions, resp, err = c.client.Reactions.ListIssueReactions(ctx, ref.Owner, ref.Name, number, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, reactions...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListPullRequests fetches every pull request, newest-updated first.
func (c *GitHubClient) ListPullRequests(ctx context.Context, ref tables.RepoRef) ([]*github.PullRequest, error) {
	opt := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	var all []*github.PullRequest
	for {
		var prs []*github.PullRequest
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			prs, resp, err = c.client.PullRequests.List(ctx, ref.Owner, ref.Name, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, prs...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// FirstPullRequest peeks at the most recently updated pull request.
func (c *GitHubClient) FirstPullRequest(ctx context.Context, ref tables.RepoRef) (*github.PullRequest, error) {
	opt := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 1},
	}

	var prs []*github.PullRequest
	_, err := c.do(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		prs, resp, err = c.client.PullRequests.List(ctx, ref.Owner, ref.Name, opt)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prs[0], nil
}

// GetPullRequest fetches the full record of one pull request; the
// listing endpoint omits diff statistics.
func (c *GitHubClient) GetPullRequest(ctx context.Context, ref tables.RepoRef, number int) (*github.PullRequest, error) {
	var pr *github.PullRequest
	_, err := c.do(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		pr, resp, err = c.client.PullRequests.Get(ctx, ref.Owner, ref.Name, number)
		return resp, err
	})
	return pr, err
}

// ListReviews fetches the reviews of one pull request.
func (c *GitHubClient) ListReviews(ctx context.Context, ref tables.RepoRef, number int) ([]*github.PullRequestReview, error) {
	opt := &github.ListOptions{PerPage: c.perPage}

	var all []*github.PullRequestReview
	for {
		var reviews []*github.PullRequestReview
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			reviews, resp, err = c.client.PullRequests.ListReviews(ctx, ref.Owner, ref.Name, number, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, reviews...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListPullRequestComments fetches the review comments of one pull request.
func (c *GitHubClient) ListPullRequestComments(ctx context.Context, ref tables.RepoRef, number int) ([]*github.PullRequestComment, error) {
	opt := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	var all []*github.PullRequestComment
	for {
		var comments []*github.PullRequestComment
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			comments, resp, err = c.client.PullRequests.ListComments(ctx, ref.Owner, ref.Name, number, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, comments...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListReleases fetches every release of the repository.
func (c *GitHubClient) ListReleases(ctx context.Context, ref tables.RepoRef) ([]*github.RepositoryRelease, error) {
	opt := &github.ListOptions{PerPage: c.perPage}

	var all []*github.RepositoryRelease
	for {
		var releases []*github.RepositoryRelease
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			releases, resp, err = c.client.Repositories.ListReleases(ctx, ref.Owner, ref.Name, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, releases...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// FirstRelease peeks at the newest release with a single one-item page.
func (c *GitHubClient) FirstRelease(ctx context.Context, ref tables.RepoRef) (*github.RepositoryRelease, error) {
	opt := &github.ListOptions{PerPage: 1}

	var releases []*github.RepositoryRelease
	_, err := c.do(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		releases, resp, err = c.client.Repositories.ListReleases(ctx, ref.Owner, ref.Name, opt)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, nil
	}
	return releases[0], nil
}

// ListWorkflows fetches every Actions workflow definition.
func (c *GitHubClient) ListWorkflows(ctx context.Context, ref tables.RepoRef) ([]*github.Workflow, error) {
	opt := &github.ListOptions{PerPage: c.perPage}

	var all []*github.Workflow
	for {
		var workflows *github.Workflows
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			workflows, resp, err = c.client.Actions.ListWorkflows(ctx, ref.Owner, ref.Name, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, workflows.Workflows...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// ListWorkflowRuns fetches every workflow run, newest first.
func (c *GitHubClient) ListWorkflowRuns(ctx context.Context, ref tables.RepoRef) ([]*github.WorkflowRun, error) {
	opt := &github.ListWorkflowRunsOptions{
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	var all []*github.WorkflowRun
	for {
		var runs *github.WorkflowRuns
		resp, err := c.do(ctx, func() (*github.Response, error) {
			var resp *github.Response
			var err error
			runs, resp, err = c.client.Actions.ListRepositoryWorkflowRuns(ctx, ref.Owner, ref.Name, opt)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		all = append(all, runs.WorkflowRuns...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

// FirstWorkflowRun peeks at the most recent workflow run.
func (c *GitHubClient) FirstWorkflowRun(ctx context.Context, ref tables.RepoRef) (*github.WorkflowRun, error) {
	opt := &github.ListWorkflowRunsOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}

	var runs *github.WorkflowRuns
	_, err := c.do(ctx, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		runs, resp, err = c.client.Actions.ListRepositoryWorkflowRuns(ctx, ref.Owner, ref.Name, opt)
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if runs == nil || len(runs.WorkflowRuns) == 0 {
		return nil, nil
	}
	return runs.WorkflowRuns[0], nil
}
