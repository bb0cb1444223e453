package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdigris-dev/atrium/backend/internal/platform/apperror"
)

func TestNewAndWrap(t *testing.T) {
	err := apperror.New(apperror.CodeNotFound, apperror.BusinessCodeArticleNotFound,
		"article not found", http.StatusNotFound)
	assert.Equal(t, apperror.CodeNotFound, err.Code)
	assert.Equal(t, apperror.BusinessCodeArticleNotFound, err.BusinessCode)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, "article not found", err.Error())
	assert.Nil(t, err.Inner)
	assert.Nil(t, err.Details)

	inner := errors.New("connection refused")
	wrapped := apperror.Wrap(inner, apperror.CodeInternalError, apperror.BusinessCodeGeneral,
		"failed to load role", http.StatusInternalServerError)
	assert.Equal(t, inner, wrapped.Unwrap())
	assert.ErrorIs(t, wrapped, inner)
}

func TestWithDetails_ClonesSentinel(t *testing.T) {
	sentinel := apperror.New(apperror.CodeValidationFailed, apperror.BusinessCodeInvalidFormat,
		"invalid section data", http.StatusBadRequest)

	detailed := sentinel.WithDetails("read level cannot be negative")

	require.NotSame(t, sentinel, detailed)
	assert.Nil(t, sentinel.Details, "shared sentinel must stay untouched")
	assert.Equal(t, "read level cannot be negative", detailed.Details)

	// The clone still matches the sentinel under errors.Is.
	assert.ErrorIs(t, detailed, sentinel)
}

func TestIs_MatchesOnBothCodes(t *testing.T) {
	articleMissing := apperror.New(apperror.CodeNotFound, apperror.BusinessCodeArticleNotFound,
		"article not found", http.StatusNotFound)

	cases := []struct {
		name   string
		target error
		want   bool
	}{
		{
			name: "same codes, different message",
			target: apperror.New(apperror.CodeNotFound, apperror.BusinessCodeArticleNotFound,
				"gone", http.StatusNotFound),
			want: true,
		},
		{
			name: "same category, different business code",
			target: apperror.New(apperror.CodeNotFound, apperror.BusinessCodeCommentNotFound,
				"comment not found", http.StatusNotFound),
			want: false,
		},
		{
			name: "different category",
			target: apperror.New(apperror.CodeConflict, apperror.BusinessCodeArticleNotFound,
				"conflict", http.StatusConflict),
			want: false,
		},
		{
			name:   "plain error",
			target: errors.New("article not found"),
			want:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errors.Is(articleMissing, tc.target))
		})
	}
}

func TestFormat(t *testing.T) {
	inner := errors.New("unique constraint violated")
	err := apperror.Wrap(inner, apperror.CodeConflict, apperror.BusinessCodeSlugAlreadyExists,
		"slug already in use", http.StatusConflict).WithDetails(map[string]string{"slug": "hello-world"})

	assert.Equal(t, "slug already in use", fmt.Sprintf("%s", err))
	assert.Equal(t, "slug already in use", fmt.Sprintf("%v", err))

	verbose := fmt.Sprintf("%+v", err)
	assert.Contains(t, verbose, "Code: CONFLICT")
	assert.Contains(t, verbose, "BusinessCode: SLUG_ALREADY_EXISTS")
	assert.Contains(t, verbose, "HTTPStatus: 409")
	assert.Contains(t, verbose, "Caused by: unique constraint violated")
	assert.Contains(t, verbose, "slug:hello-world")
}

func TestFormat_BareError(t *testing.T) {
	err := apperror.New(apperror.CodeForbidden, apperror.BusinessCodePermissionDenied,
		"permission denied", http.StatusForbidden)

	verbose := fmt.Sprintf("%+v", err)
	assert.NotContains(t, verbose, "Caused by:")
	assert.NotContains(t, verbose, "Details:")
}
