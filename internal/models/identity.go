package models

import (
	"github.com/alimgiray/ghminer/internal/tables"
)

// IdentitySchema is the user table. It lives at the data-directory
// root, one row per anonymized account.
var IdentitySchema = tables.NewSchema("Users",
	"internal_id",
	"anonymous_id",
	"login",
	"display_name",
	"email",
	"aliases",
)

// Identity maps one GitHub account to its anonymous id. The internal
// id (GitHub's node id) is the natural key; login, display name and
// email are kept only for unknown-user matching, never written into
// activity tables. Aliases collects raw committer strings that have
// been bound to this identity.
type Identity struct {
	InternalID  string
	AnonymousID string
	Login       *string
	DisplayName *string
	Email       *string
	Aliases     []string
}

// HasAlias reports whether the raw string is already bound to this identity.
func (i *Identity) HasAlias(alias string) bool {
	for _, a := range i.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// AddAlias binds a raw committer string to this identity. Re-adding an
// existing alias is a no-op.
func (i *Identity) AddAlias(alias string) {
	if !i.HasAlias(alias) {
		i.Aliases = append(i.Aliases, alias)
	}
}

func (i *Identity) ToRow() *tables.Row {
	row := tables.NewRow(IdentitySchema)
	row.MustSet("internal_id", i.InternalID)
	row.MustSet("anonymous_id", i.AnonymousID)
	row.MustSet("login", optString(i.Login))
	row.MustSet("display_name", optString(i.DisplayName))
	row.MustSet("email", optString(i.Email))
	row.MustSet("aliases", i.Aliases)
	return row
}

func IdentityFromRow(row *tables.Row) *Identity {
	internalID, _ := row.String("internal_id")
	anonymousID, _ := row.String("anonymous_id")
	return &Identity{
		InternalID:  internalID,
		AnonymousID: anonymousID,
		Login:       strPtr(row, "login"),
		DisplayName: strPtr(row, "display_name"),
		Email:       strPtr(row, "email"),
		Aliases:     row.StringList("aliases"),
	}
}
