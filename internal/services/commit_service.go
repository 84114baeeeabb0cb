package services

import (
	"fmt"

	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
)

// CommitService turns mined history into the commit, edit and branch
// tables. Commit identities come as raw name/email strings; the
// service attributes them against the identities the API passes have
// already minted. A commit nobody matches keeps its raw committer
// string in unknown_user for the resolver pass.
type CommitService struct {
	anonymizer *anonymize.Anonymizer
}

// NewCommitService creates a commit extraction service.
func NewCommitService(anonymizer *anonymize.Anonymizer) *CommitService {
	return &CommitService{anonymizer: anonymizer}
}

// Extract writes the three mined-history tables.
func (s *CommitService) Extract(store *tables.Store, commits []*MinedCommit, edits []*MinedEdit, branches []*MinedBranch) error {
	commitRows := make([]*tables.Row, 0, len(commits))
	for _, mined := range commits {
		commitRows = append(commitRows, s.extractCommit(mined).ToRow())
	}
	if err := store.WriteTable(models.DirGit, models.CommitSchema, commitRows); err != nil {
		return err
	}

	editRows := make([]*tables.Row, 0, len(edits))
	for _, mined := range edits {
		record := &models.Edit{
			CommitSHA: mined.SHA,
			FilePath:  mined.Path,
			Additions: mined.Additions,
			Deletions: mined.Deletions,
		}
		editRows = append(editRows, record.ToRow())
	}
	if err := store.WriteTable(models.DirGit, models.EditSchema, editRows); err != nil {
		return err
	}

	branchRows := make([]*tables.Row, 0, len(branches))
	for _, mined := range branches {
		record := &models.Branch{Name: mined.Name, CommitSHA: mined.SHA}
		branchRows = append(branchRows, record.ToRow())
	}
	return store.WriteTable(models.DirGit, models.BranchSchema, branchRows)
}

func (s *CommitService) extractCommit(mined *MinedCommit) *models.Commit {
	record := &models.Commit{
		SHA:          mined.SHA,
		Message:      mined.Message,
		CommittedAt:  mined.CommittedAt,
		Additions:    mined.Additions,
		Deletions:    mined.Deletions,
		TotalChanges: mined.Additions + mined.Deletions,
		IsMerge:      len(mined.Parents) > 1,
		Parents:      mined.Parents,
		Branches:     mined.Branches,
		Tag:          mined.Tag,
	}

	author := s.attribute(mined.AuthorName, mined.AuthorEmail)
	committer := s.attribute(mined.CommitterName, mined.CommitterEmail)
	if author != "" {
		record.Author = &author
	}
	if committer != "" {
		record.Committer = &committer
	}

	// Attribution failure is never an error; the raw string is kept
	// for the resolver pass.
	if author == "" {
		unknown := rawUserString(mined.AuthorName, mined.AuthorEmail)
		record.UnknownUser = &unknown
	} else if committer == "" {
		unknown := rawUserString(mined.CommitterName, mined.CommitterEmail)
		record.UnknownUser = &unknown
	}

	return record
}

// attribute matches a commit identity string against the known
// identities by email, display name, login, or previously bound alias.
func (s *CommitService) attribute(name, email string) string {
	for _, identity := range s.anonymizer.Identities() {
		if email != "" && identity.Email != nil && *identity.Email == email {
			return identity.AnonymousID
		}
		if name != "" && identity.DisplayName != nil && *identity.DisplayName == name {
			return identity.AnonymousID
		}
		if name != "" && identity.Login != nil && *identity.Login == name {
			return identity.AnonymousID
		}
		if identity.HasAlias(rawUserString(name, email)) || identity.HasAlias(name) {
			return identity.AnonymousID
		}
	}
	return ""
}

// rawUserString is the canonical unknown-user form of a commit identity.
func rawUserString(name, email string) string {
	if email == "" {
		return name
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
