package services

import (
	"github.com/alimgiray/ghminer/internal/anonymize"
	"github.com/google/go-github/v57/github"
)

// userInfo converts an API user object into the anonymizer's input.
// A nil user stays nil, so absent identity fields pass through the
// anonymizer as "field omitted".
func userInfo(u *github.User) *anonymize.UserInfo {
	if u == nil {
		return nil
	}
	info := &anonymize.UserInfo{InternalID: u.GetNodeID()}
	if u.Login != nil {
		info.Login = u.Login
	}
	if u.Name != nil {
		info.DisplayName = u.Name
	}
	if u.Email != nil {
		info.Email = u.Email
	}
	return info
}

// resolveUser anonymizes an API user into a nullable identity column.
func resolveUser(anonymizer *anonymize.Anonymizer, u *github.User) (*string, error) {
	id, err := anonymizer.Resolve(userInfo(u))
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}
	return &id, nil
}
