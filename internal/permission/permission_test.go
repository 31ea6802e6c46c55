package permission

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func TestCanWrite(t *testing.T) {
	alice := &model.User{ID: 1}

	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.NoError(t, CanWrite(nil, m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		var denied *DeniedError
		assert.True(t, errors.As(CanWrite(nil, m), &denied), m)
		assert.False(t, denied.Authenticated)
		assert.NoError(t, CanWrite(alice, m), m)
	}
}

func TestCanModify(t *testing.T) {
	alice := &model.User{ID: 1}
	bob := &model.User{ID: 2}

	assert.NoError(t, CanModify(bob, alice.ID, http.MethodGet))
	assert.NoError(t, CanModify(nil, alice.ID, http.MethodGet))
	assert.NoError(t, CanModify(alice, alice.ID, http.MethodPut))
	assert.NoError(t, CanModify(alice, alice.ID, http.MethodDelete))

	var denied *DeniedError
	assert.ErrorAs(t, CanModify(bob, alice.ID, http.MethodPatch), &denied)
	assert.True(t, denied.Authenticated)
	assert.Equal(t, ReasonNotAuthor, denied.Reason)

	assert.ErrorAs(t, CanModify(nil, alice.ID, http.MethodDelete), &denied)
	assert.False(t, denied.Authenticated)
}

func TestCanModifyComment(t *testing.T) {
	c := &model.Comment{ID: 9, AuthorID: 1}

	var denied *DeniedError
	assert.ErrorAs(t, CanModifyComment(&model.User{ID: 2}, c, http.MethodPut), &denied)
	assert.Equal(t, ReasonNotCommentAuthor, denied.Reason)
	assert.NoError(t, CanModifyComment(&model.User{ID: 1}, c, http.MethodDelete))
}
