package anonymize

import (
	"fmt"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
)

// Resolver reconciles commit records whose committer the API could not
// attribute to a platform account. It runs as a later pass over the
// persisted commit table: an unknown committer string is either
// matched heuristically against known identities, bound by the
// operator to an existing anonymous id, or bound to a newly minted
// identity. A string nobody matches and nobody binds stays unknown,
// which is never an error.
type Resolver struct {
	store      *tables.Store
	anonymizer *Anonymizer
}

// NewResolver creates a resolver over one repository's commit table.
func NewResolver(store *tables.Store, anonymizer *Anonymizer) *Resolver {
	return &Resolver{store: store, anonymizer: anonymizer}
}

// UnknownUsers returns the distinct unresolved committer strings in
// the commit table, in first-seen order.
func (r *Resolver) UnknownUsers() ([]string, error) {
	commits, err := r.loadCommits()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, commit := range commits {
		if commit.UnknownUser == nil {
			continue
		}
		if !seen[*commit.UnknownUser] {
			seen[*commit.UnknownUser] = true
			names = append(names, *commit.UnknownUser)
		}
	}
	return names, nil
}

// AutoResolve attempts to match every unresolved committer string
// against the display name, email or login of a known identity and
// binds the matches. It returns the number of strings resolved.
func (r *Resolver) AutoResolve() (int, error) {
	names, err := r.UnknownUsers()
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, name := range names {
		identity := r.match(name)
		if identity == nil {
			continue
		}
		if err := r.BindExisting(name, identity.AnonymousID); err != nil {
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}

// BindExisting rewrites every commit whose unknown committer string
// equals name to the given anonymous id and records the string as an
// alias of that identity.
func (r *Resolver) BindExisting(name, anonymousID string) error {
	if r.anonymizer.Lookup(anonymousID) == nil {
		return fmt.Errorf("no identity with anonymous id %q", anonymousID)
	}
	if err := r.rewrite(name, anonymousID); err != nil {
		return err
	}
	return r.anonymizer.AddAlias(anonymousID, name)
}

// BindNew mints a fresh identity for an unresolved committer string.
// The supplied binding target becomes the identity's internal id, so
// in reversible mode the stored anonymous id is directly inspectable.
func (r *Resolver) BindNew(name, target string) error {
	displayName := name
	anonymousID, err := r.anonymizer.Resolve(&UserInfo{
		InternalID:  target,
		DisplayName: &displayName,
	})
	if err != nil {
		return err
	}
	if anonymousID == "" {
		return fmt.Errorf("could not mint identity for %q", name)
	}
	if err := r.rewrite(name, anonymousID); err != nil {
		return err
	}
	return r.anonymizer.AddAlias(anonymousID, name)
}

// match finds the first identity whose display name, email or login
// equals the unresolved string.
func (r *Resolver) match(name string) *models.Identity {
	for _, identity := range r.anonymizer.Identities() {
		if identity.DisplayName != nil && *identity.DisplayName == name {
			return identity
		}
		if identity.Email != nil && *identity.Email == name {
			return identity
		}
		if identity.Login != nil && *identity.Login == name {
			return identity
		}
	}
	return nil
}

// rewrite replaces the commit table with every matching commit bound
// to the anonymous id.
func (r *Resolver) rewrite(name, anonymousID string) error {
	commits, err := r.loadCommits()
	if err != nil {
		return err
	}

	changed := false
	rows := make([]*tables.Row, 0, len(commits))
	for _, commit := range commits {
		if commit.UnknownUser != nil && *commit.UnknownUser == name {
			commit.Bind(anonymousID)
			changed = true
		}
		rows = append(rows, commit.ToRow())
	}
	if !changed {
		return nil
	}

	return r.store.WriteTable(models.DirGit, models.CommitSchema, rows)
}

func (r *Resolver) loadCommits() ([]*models.Commit, error) {
	rows, err := r.store.ReadTable(models.DirGit, models.CommitSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit table: %w", err)
	}

	commits := make([]*models.Commit, 0, len(rows))
	for _, row := range rows {
		commits = append(commits, models.CommitFromRow(row))
	}
	return commits, nil
}
