package tables

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RepoRef identifies one registered repository in the data root.
type RepoRef struct {
	Owner string
	Name  string
}

// Slug returns the directory name used for the repository's tables.
func (r RepoRef) Slug() string {
	return r.Owner + "-" + r.Name
}

// FullName returns the owner/name form of the reference.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

var registrySchema = NewSchema("Repositories", "owner", "name")

// Registry is the append-only list of repositories registered in a
// data root. Registration is a read-modify-write of the whole file;
// entries are never removed.
type Registry struct {
	store *Store
}

// NewRegistry creates a registry over the given data root.
func NewRegistry(dataRoot string) *Registry {
	return &Registry{store: NewStore(dataRoot)}
}

// List returns all registered repositories in registration order.
func (r *Registry) List() ([]RepoRef, error) {
	rows, err := r.store.ReadTable("", registrySchema)
	if err != nil {
		return nil, err
	}

	refs := make([]RepoRef, 0, len(rows))
	for _, row := range rows {
		owner, _ := row.String("owner")
		name, _ := row.String("name")
		refs = append(refs, RepoRef{Owner: owner, Name: name})
	}
	return refs, nil
}

// Add registers a repository. Re-registering an existing repository is
// a no-op.
func (r *Registry) Add(ref RepoRef) error {
	refs, err := r.List()
	if err != nil {
		return err
	}

	for _, existing := range refs {
		if existing == ref {
			return nil
		}
	}

	rows := make([]*Row, 0, len(refs)+1)
	for _, existing := range append(refs, ref) {
		row := NewRow(registrySchema)
		row.MustSet("owner", existing.Owner)
		row.MustSet("name", existing.Name)
		rows = append(rows, row)
	}

	return r.store.WriteTable("", registrySchema, rows)
}

// RepoDir returns the absolute table directory of a repository.
func (r *Registry) RepoDir(ref RepoRef) string {
	return filepath.Join(r.store.Root(), ref.Slug())
}

// ParseRef parses an "owner/name" argument into a RepoRef.
func ParseRef(arg string) (RepoRef, error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("invalid repository %q, expected owner/name", arg)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}
