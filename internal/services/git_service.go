package services

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/ghminer/internal/tables"
)

// fieldSep separates fields inside one formatted git log line.
const fieldSep = "\x1f"

// MinedCommit is one commit as read from the local clone, before any
// identity attribution.
type MinedCommit struct {
	SHA            string
	AuthorName     string
	AuthorEmail    string
	CommitterName  string
	CommitterEmail string
	Message        string
	CommittedAt    time.Time
	Parents        []string
	Additions      int
	Deletions      int
	Branches       []string
	Tag            *string
}

// MinedEdit is one file touched by one commit.
type MinedEdit struct {
	SHA       string
	Path      string
	Additions int
	Deletions int
}

// MinedBranch is one branch head of the clone. Ref keeps the full
// short ref name so history walks work for remote-only branches.
type MinedBranch struct {
	Name string
	Ref  string
	SHA  string
}

// GitService clones a repository and mines its history into commit,
// edit and branch collections. It shells out to the git binary; the
// miner's output column layout is git's, renamed into our own record
// schema by the commit extraction pass.
type GitService struct {
	cloneBasePath string
}

// NewGitService creates a git service cloning under the given base path.
func NewGitService(cloneBasePath string) *GitService {
	return &GitService{cloneBasePath: cloneBasePath}
}

// ClonePath returns the local clone directory for a repository.
func (s *GitService) ClonePath(ref tables.RepoRef) string {
	return filepath.Join(s.cloneBasePath, ref.Slug())
}

// CloneOrUpdate clones the repository, or pulls if a clone already
// exists, and returns the clone path.
func (s *GitService) CloneOrUpdate(ref tables.RepoRef, token string) (string, error) {
	path := s.ClonePath(ref)

	if s.isCloned(path) {
		cmd := exec.Command("git", "-C", path, "pull", "--all")
		if output, err := cmd.CombinedOutput(); err != nil {
			return "", fmt.Errorf("git pull failed: %s: %w", strings.TrimSpace(string(output)), err)
		}
		return path, nil
	}

	if err := os.MkdirAll(s.cloneBasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create clone directory: %w", err)
	}

	url := fmt.Sprintf("https://github.com/%s/%s.git", ref.Owner, ref.Name)
	if token != "" {
		url = fmt.Sprintf("https://x-access-token:%s@github.com/%s/%s.git", token, ref.Owner, ref.Name)
	}

	cmd := exec.Command("git", "clone", url, path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git clone failed: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return path, nil
}

func (s *GitService) isCloned(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// Mine reads the full history of the clone.
func (s *GitService) Mine(path string) ([]*MinedCommit, []*MinedEdit, []*MinedBranch, error) {
	commits, err := s.mineCommits(path)
	if err != nil {
		return nil, nil, nil, err
	}

	edits, err := s.mineEdits(path)
	if err != nil {
		return nil, nil, nil, err
	}

	// Fold the numstat totals into the commit records.
	bySHA := make(map[string]*MinedCommit, len(commits))
	for _, commit := range commits {
		bySHA[commit.SHA] = commit
	}
	for _, edit := range edits {
		if commit, ok := bySHA[edit.SHA]; ok {
			commit.Additions += edit.Additions
			commit.Deletions += edit.Deletions
		}
	}

	branches, err := s.mineBranches(path)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, branch := range branches {
		shas, err := s.revList(path, branch.Ref)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, sha := range shas {
			if commit, ok := bySHA[sha]; ok {
				commit.Branches = append(commit.Branches, branch.Name)
			}
		}
	}

	tags, err := s.mineTags(path)
	if err != nil {
		return nil, nil, nil, err
	}
	for sha, tag := range tags {
		if commit, ok := bySHA[sha]; ok {
			tagName := tag
			commit.Tag = &tagName
		}
	}

	return commits, edits, branches, nil
}

func (s *GitService) mineCommits(path string) ([]*MinedCommit, error) {
	format := strings.Join([]string{"%H", "%an", "%ae", "%cn", "%ce", "%cI", "%P", "%s"}, fieldSep)
	output, err := s.git(path, "log", "--all", "--pretty=format:"+format)
	if err != nil {
		return nil, err
	}

	var commits []*MinedCommit
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, fieldSep)
		if len(fields) != 8 {
			continue
		}

		committedAt, err := time.Parse(time.RFC3339, fields[5])
		if err != nil {
			return nil, fmt.Errorf("failed to parse commit date %q: %w", fields[5], err)
		}

		commit := &MinedCommit{
			SHA:            fields[0],
			AuthorName:     fields[1],
			AuthorEmail:    fields[2],
			CommitterName:  fields[3],
			CommitterEmail: fields[4],
			CommittedAt:    committedAt.UTC(),
			Message:        fields[7],
		}
		if fields[6] != "" {
			commit.Parents = strings.Fields(fields[6])
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func (s *GitService) mineEdits(path string) ([]*MinedEdit, error) {
	output, err := s.git(path, "log", "--all", "--numstat", "--pretty=format:commit"+fieldSep+"%H")
	if err != nil {
		return nil, err
	}

	var edits []*MinedEdit
	var currentSHA string
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "commit"+fieldSep) {
			currentSHA = strings.TrimPrefix(line, "commit"+fieldSep)
			continue
		}

		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 || currentSHA == "" {
			continue
		}

		// Binary files report "-" counts.
		additions, _ := strconv.Atoi(parts[0])
		deletions, _ := strconv.Atoi(parts[1])
		edits = append(edits, &MinedEdit{
			SHA:       currentSHA,
			Path:      parts[2],
			Additions: additions,
			Deletions: deletions,
		})
	}
	return edits, nil
}

func (s *GitService) mineBranches(path string) ([]*MinedBranch, error) {
	output, err := s.git(path, "for-each-ref", "refs/heads", "refs/remotes",
		"--format=%(refname:short)"+fieldSep+"%(objectname)")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var branches []*MinedBranch
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, fieldSep)
		if len(fields) != 2 {
			continue
		}
		ref := fields[0]
		name := strings.TrimPrefix(ref, "origin/")
		if name == "HEAD" || seen[name] {
			continue
		}
		seen[name] = true
		branches = append(branches, &MinedBranch{Name: name, Ref: ref, SHA: fields[1]})
	}
	return branches, nil
}

func (s *GitService) mineTags(path string) (map[string]string, error) {
	// %(*objectname) is the commit behind an annotated tag; plain tags
	// carry the commit in %(objectname).
	output, err := s.git(path, "for-each-ref", "refs/tags",
		"--format=%(refname:short)"+fieldSep+"%(objectname)"+fieldSep+"%(*objectname)")
	if err != nil {
		return nil, err
	}

	tags := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, fieldSep)
		if len(fields) != 3 {
			continue
		}
		sha := fields[2]
		if sha == "" {
			sha = fields[1]
		}
		tags[sha] = fields[0]
	}
	return tags, nil
}

func (s *GitService) revList(path, branch string) ([]string, error) {
	output, err := s.git(path, "rev-list", branch)
	if err != nil {
		return nil, err
	}
	return strings.Fields(output), nil
}

func (s *GitService) git(path string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", path}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}
