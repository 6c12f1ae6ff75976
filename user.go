package edgecontext

import (
	"strings"

	"github.com/auth0/go-edge-context/core"
)

// User is the requesting user: the verified token subject plus the visitor
// (loid) cookie fields carried next to it.
type User struct {
	decision         core.TrustDecision
	visitorID        string
	visitorCreatedMS *int64
}

// ID returns the account id of the authenticated user. It fails with
// ErrAuthenticationAbsent when there is no valid token or the subject is not
// an account.
func (u User) ID() (string, error) {
	valid, ok := u.decision.(core.Valid)
	if !ok {
		return "", ErrAuthenticationAbsent
	}

	subject := valid.Subject()
	if !strings.HasPrefix(subject, AccountPrefix) {
		return "", ErrAuthenticationAbsent
	}
	return subject, nil
}

// IsLoggedIn reports whether ID succeeds.
func (u User) IsLoggedIn() bool {
	_, err := u.ID()
	return err == nil
}

// Roles returns the verified roles as issued.
func (u User) Roles() ([]string, error) {
	valid, ok := u.decision.(core.Valid)
	if !ok {
		return nil, ErrAuthenticationAbsent
	}
	return valid.Roles(), nil
}

// HasRole reports whether the verified roles contain role, ignoring case.
func (u User) HasRole(role string) (bool, error) {
	valid, ok := u.decision.(core.Valid)
	if !ok {
		return false, ErrAuthenticationAbsent
	}
	return valid.HasRole(role), nil
}

// VisitorID returns the loid, or "" when absent.
func (u User) VisitorID() string {
	return u.visitorID
}

// VisitorCreatedMS returns when the loid was created, or nil when absent.
func (u User) VisitorCreatedMS() *int64 {
	return copyInt64(u.visitorCreatedMS)
}

// EventFields returns user_id (the account id when logged in, the loid
// otherwise), logged_in and cookie_created_timestamp.
func (u User) EventFields() map[string]any {
	id, err := u.ID()
	loggedIn := err == nil

	var userID any
	if loggedIn {
		userID = id
	} else {
		userID = nilIfEmpty(u.visitorID)
	}

	var created any
	if u.visitorCreatedMS != nil {
		created = *u.visitorCreatedMS
	}

	return map[string]any{
		"user_id":                  userID,
		"logged_in":                loggedIn,
		"cookie_created_timestamp": created,
	}
}
