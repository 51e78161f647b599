package service

import "errors"

var (
	// ErrSelfDeletion is returned when the signed-in user tries to remove their own account
	ErrSelfDeletion = errors.New("cannot delete the currently signed-in user")
	// ErrUsernameTaken is returned when a username is already held by another user
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidUser is returned for a user without a username or with an unknown role
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidVisit is returned when a visit form is incomplete
	ErrInvalidVisit = errors.New("invalid visit")
	// ErrUnsupportedLanguage is returned by SetLanguage for unknown tags
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
