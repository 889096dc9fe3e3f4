package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"duplicate application", ErrDuplicateApplication, KindValidation},
		{"missing employer", ErrMissingEmployer, KindValidation},
		{"terminal state", ErrTerminalState, KindValidation},
		{"local cv reference", ErrLocalCVReference, KindValidation},
		{"permission denied", ErrPermissionDenied, KindPermission},
		{"auth expired", ErrAuthExpired, KindAuth},
		{"jwt expired", jwt.ErrTokenExpired, KindAuth},
		{"not found", ErrNotFound, KindNotFound},
		{"cv gone", ErrCVGone, KindNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, KindNotFound},
		{"offline", ErrOffline, KindOffline},
		{"deadline", context.DeadlineExceeded, KindOffline},
		{"conn refused", syscall.ECONNREFUSED, KindOffline},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"pg fk violation", &pgconn.PgError{Code: "23503"}, KindValidation},
		{"pg not null violation", &pgconn.PgError{Code: "23502"}, KindValidation},
		{"anything else", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestClassifySeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("application abc: %w", ErrDuplicateApplication)
	assert.Equal(t, KindValidation, Classify(err))

	err = fmt.Errorf("cv xyz: %w", fmt.Errorf("load: %w", ErrCVGone))
	assert.Equal(t, KindNotFound, Classify(err))
}

func TestKindPolicy(t *testing.T) {
	// Permission and auth failures degrade silently; everything else surfaces.
	assert.False(t, KindPermission.Surfaced())
	assert.False(t, KindAuth.Surfaced())
	assert.True(t, KindValidation.Surfaced())
	assert.True(t, KindOffline.Surfaced())
	assert.True(t, KindUnknown.Surfaced())

	// Only environmental failures get a retry affordance.
	assert.True(t, KindOffline.Retryable())
	assert.False(t, KindValidation.Retryable())
	assert.False(t, KindConflict.Retryable())
	assert.False(t, KindUnknown.Retryable())
}

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, KindPermission.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, KindAuth.HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, KindOffline.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindUnknown.HTTPStatus())
}
