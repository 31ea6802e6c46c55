// Package permission decides whether a request may proceed: a write gate on
// identity and an ownership gate on the target's author.
package permission

import (
	"net/http"

	"github.com/d60-Lab/gin-blog/internal/model"
)

const (
	ReasonNotAuthenticated = "Authentication credentials were not provided."
	ReasonNotAuthor        = "You do not have permission to perform this action."
	ReasonNotCommentAuthor = "Only the comment author can edit or delete this comment."
)

// DeniedError is an authorization failure. Authenticated tells the caller
// whether the requester had an identity at all.
type DeniedError struct {
	Reason        string
	Authenticated bool
}

func (e *DeniedError) Error() string { return "permission denied: " + e.Reason }

// IsSafeMethod reports whether method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanWrite is the write gate. A nil identity is anonymous.
func CanWrite(identity *model.User, method string) error {
	if IsSafeMethod(method) || identity != nil {
		return nil
	}
	return &DeniedError{Reason: ReasonNotAuthenticated}
}

// CanModify is the ownership gate. Safe methods always pass.
func CanModify(identity *model.User, authorID uint, method string) error {
	return canModify(identity, authorID, method, ReasonNotAuthor)
}

// CanModifyComment is CanModify with the comment-specific reason.
func CanModifyComment(identity *model.User, c *model.Comment, method string) error {
	return canModify(identity, c.AuthorID, method, ReasonNotCommentAuthor)
}

func canModify(identity *model.User, authorID uint, method, reason string) error {
	if IsSafeMethod(method) {
		return nil
	}
	if identity == nil {
		return &DeniedError{Reason: ReasonNotAuthenticated}
	}
	if identity.ID != authorID {
		return &DeniedError{Reason: reason, Authenticated: true}
	}
	return nil
}
