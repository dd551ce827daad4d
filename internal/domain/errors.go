package domain

import "fmt"

// Kind is the closed enumeration of failure classes surfaced by public
// component boundaries. Callers match with errors.Is against the Err*
// sentinels below.
type Kind int

const (
	KindOperationFailed Kind = iota
	KindWorkspaceNotFound
	KindWorkspaceAlreadyExists
	KindTokenNotFound
	KindTokenExpired
	KindTokenRevoked
	KindTokenForbidden
	KindValidation
)

// Error carries a kind, a message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e Error) Unwrap() error { return e.Cause }

// Is matches any Error of the same kind, so errors.Is(err, ErrTokenExpired)
// works regardless of message or cause.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		tp, ok := target.(*Error)
		if !ok {
			return false
		}
		t = *tp
	}
	return e.Kind == t.Kind
}

func NewError(kind Kind, message string) Error {
	return Error{Kind: kind, Message: message}
}

func WrapError(kind Kind, message string, cause error) Error {
	return Error{Kind: kind, Message: message, Cause: cause}
}

// Sentinels for errors.Is matching.
var (
	ErrOperationFailed        = Error{Kind: KindOperationFailed, Message: "operation failed"}
	ErrWorkspaceNotFound      = Error{Kind: KindWorkspaceNotFound, Message: "workspace not found"}
	ErrWorkspaceAlreadyExists = Error{Kind: KindWorkspaceAlreadyExists, Message: "workspace already exists"}
	ErrTokenNotFound          = Error{Kind: KindTokenNotFound, Message: "token not found"}
	ErrTokenExpired           = Error{Kind: KindTokenExpired, Message: "token expired"}
	ErrTokenRevoked           = Error{Kind: KindTokenRevoked, Message: "token revoked"}
	ErrTokenForbidden         = Error{Kind: KindTokenForbidden, Message: "token not valid for this workspace"}
	ErrValidation             = Error{Kind: KindValidation, Message: "validation failed"}
)
