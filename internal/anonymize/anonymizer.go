package anonymize

import (
	"fmt"

	"github.com/alimgiray/ghminer/internal/models"
	"github.com/alimgiray/ghminer/internal/tables"
	"github.com/google/uuid"
)

// ghostLogin is GitHub's placeholder account for deleted users. A
// ghost reference with no display name carries no identity worth
// minting a pseudonym for.
const ghostLogin = "ghost"

// UserInfo is the raw identity of a GitHub account as seen during
// extraction. InternalID is the platform's stable node id and the only
// field that participates in deduplication.
type UserInfo struct {
	InternalID  string
	Login       *string
	DisplayName *string
	Email       *string
}

// Anonymizer owns the user table of one repository's data directory.
// It keeps an in-memory index over the persisted identities and writes
// the whole table through on every new identity, so every extractor in
// the session observes the same mapping.
//
// A single process must own the data directory for the duration of a
// session; concurrent sessions against the same directory would
// corrupt the user table.
type Anonymizer struct {
	store *tables.Store
	// reversible stores the internal id itself as the anonymous id,
	// for operator-controlled de-anonymization.
	reversible bool
	index      map[string]*models.Identity
	byAnonID   map[string]*models.Identity
	identities []*models.Identity
}

// NewAnonymizer loads the persisted user table into memory.
func NewAnonymizer(store *tables.Store, reversible bool) (*Anonymizer, error) {
	rows, err := store.ReadTable("", models.IdentitySchema)
	if err != nil {
		return nil, fmt.Errorf("failed to load user table: %w", err)
	}

	a := &Anonymizer{
		store:      store,
		reversible: reversible,
		index:      make(map[string]*models.Identity, len(rows)),
		byAnonID:   make(map[string]*models.Identity, len(rows)),
	}
	for _, row := range rows {
		identity := models.IdentityFromRow(row)
		a.add(identity)
	}
	return a, nil
}

func (a *Anonymizer) add(identity *models.Identity) {
	a.index[identity.InternalID] = identity
	a.byAnonID[identity.AnonymousID] = identity
	a.identities = append(a.identities, identity)
}

// Resolve maps a raw identity to its anonymous id, minting and
// persisting a new identity on first encounter. A nil user and a
// deleted ghost account both resolve to the empty id without touching
// the user table; callers treat an empty id as "field omitted".
func (a *Anonymizer) Resolve(user *UserInfo) (string, error) {
	if user == nil || user.InternalID == "" {
		return "", nil
	}
	if user.Login != nil && *user.Login == ghostLogin && user.DisplayName == nil {
		return "", nil
	}

	if existing, ok := a.index[user.InternalID]; ok {
		return existing.AnonymousID, nil
	}

	anonymousID := uuid.New().String()
	if a.reversible {
		anonymousID = user.InternalID
	}

	identity := &models.Identity{
		InternalID:  user.InternalID,
		AnonymousID: anonymousID,
		Login:       user.Login,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}
	a.add(identity)

	if err := a.persist(); err != nil {
		return "", fmt.Errorf("failed to persist user table: %w", err)
	}
	return anonymousID, nil
}

// Lookup returns the identity behind an anonymous id, nil if unknown.
func (a *Anonymizer) Lookup(anonymousID string) *models.Identity {
	return a.byAnonID[anonymousID]
}

// Identities returns all known identities in table order.
func (a *Anonymizer) Identities() []*models.Identity {
	return a.identities
}

// AddAlias binds a raw committer string to an existing identity and
// persists the user table. Re-adding a known alias writes nothing.
func (a *Anonymizer) AddAlias(anonymousID, alias string) error {
	identity := a.byAnonID[anonymousID]
	if identity == nil {
		return fmt.Errorf("no identity with anonymous id %q", anonymousID)
	}
	if identity.HasAlias(alias) {
		return nil
	}
	identity.AddAlias(alias)
	return a.persist()
}

func (a *Anonymizer) persist() error {
	rows := make([]*tables.Row, 0, len(a.identities))
	for _, identity := range a.identities {
		rows = append(rows, identity.ToRow())
	}
	return a.store.WriteTable("", models.IdentitySchema, rows)
}
