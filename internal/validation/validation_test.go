package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"ab", true},
		{"  ab  ", true},
		{"a", false},
		{"   a   ", false},
		{"", false},
		{"한글", true},
		{strings.Repeat("x", MaxTitleLength), true},
		{strings.Repeat("x", MaxTitleLength+1), false},
	}
	for _, tc := range cases {
		got, err := Title(tc.in)
		assert.Equal(t, tc.in, got, "original value is returned")
		if tc.ok {
			assert.NoError(t, err, "%q", tc.in)
		} else {
			var fe *FieldError
			require.ErrorAs(t, err, &fe, "%q", tc.in)
			assert.Equal(t, "title", fe.Field)
		}
	}
}

func TestPostContent(t *testing.T) {
	_, err := PostContent("1234")
	assert.Error(t, err)
	_, err = PostContent("  1234  ")
	assert.Error(t, err)

	got, err := PostContent(" 12345 ")
	assert.NoError(t, err)
	assert.Equal(t, " 12345 ", got)
}

func TestCommentContent(t *testing.T) {
	_, err := CommentContent("A")
	assert.Error(t, err)
	_, err = CommentContent("\t\n")
	assert.Error(t, err)

	got, err := CommentContent("ok")
	assert.NoError(t, err)
	assert.Equal(t, "ok", got)
}

type postPayload struct {
	Title   *string `json:"title" validate:"required,post_title"`
	Content *string `json:"content" validate:"required,post_content"`
}

type commentPayload struct {
	Content *string `json:"content" validate:"required,comment_content"`
}

func ptr(s string) *string { return &s }

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(&postPayload{Title: ptr(" x "), Content: ptr("abc")})
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"Title must be at least 2 characters long."}, errs["title"])
	assert.Equal(t, []string{"Content must be at least 5 characters long."}, errs["content"])
}

func TestStruct_MissingFields(t *testing.T) {
	err := Struct(&postPayload{})
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"This field is required."}, errs["title"])
	assert.Equal(t, []string{"This field is required."}, errs["content"])
}

func TestStruct_EmptyStringIsTooShortNotMissing(t *testing.T) {
	err := Struct(&commentPayload{Content: ptr("")})
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"Comment content must be at least 2 characters long."}, errs["content"])
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&postPayload{Title: ptr("Test Post"), Content: ptr("Test content for the post")}))
	assert.NoError(t, Struct(&commentPayload{Content: ptr("hi")}))
}

func TestErrors_Error(t *testing.T) {
	e := Errors{}
	e.Add("title", "too short")
	e.Add("content", "too short")
	assert.Equal(t, "validation failed: content: too short; title: too short", e.Error())
}
