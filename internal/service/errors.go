package service

import (
	"errors"

	"github.com/regdocgpt/regdocgpt-api/internal/repository"
)

// Expected, recoverable-by-caller outcomes. Duplicate errors are shared with
// the repository layer so errors.Is holds across both. Anything outside this
// taxonomy (connectivity, unexpected store failures) propagates unwrapped and
// is fatal to the current request.
var (
	ErrDuplicateUsername = repository.ErrDuplicateUsername
	ErrDuplicateEmail    = repository.ErrDuplicateEmail
	ErrDuplicateAccount  = repository.ErrDuplicateAccount

	ErrNoSuchAccount     = errors.New("no such account")
	ErrAccountDisabled   = errors.New("account disabled")
	ErrBadCredentials    = errors.New("bad credentials")
	ErrInvalidInviteCode = errors.New("invalid admin invite code")

	// ErrAuditAppend wraps store failures on the audit-append path so callers
	// can identify the origin.
	ErrAuditAppend = errors.New("audit append failed")
)

// Legacy procedure status codes for login outcomes. These stay in audit
// details and logs; the public HTTP message never distinguishes -1 from -3.
const (
	LoginOK            = 0
	LoginNoSuchAccount = -1
	LoginDisabled      = -2
	LoginBadPassword   = -3
)

// LoginStatusCode maps a login error to its legacy status code.
func LoginStatusCode(err error) int {
	switch {
	case err == nil:
		return LoginOK
	case errors.Is(err, ErrNoSuchAccount):
		return LoginNoSuchAccount
	case errors.Is(err, ErrAccountDisabled):
		return LoginDisabled
	case errors.Is(err, ErrBadCredentials):
		return LoginBadPassword
	default:
		return LoginNoSuchAccount
	}
}
