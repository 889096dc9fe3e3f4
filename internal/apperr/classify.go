package apperr

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Classify maps a failed operation's error to its Kind. Sentinels win over
// driver-level inspection so callers can wrap them freely with %w.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case errors.Is(err, ErrMissingEmployer),
		errors.Is(err, ErrDuplicateApplication),
		errors.Is(err, ErrTerminalState),
		errors.Is(err, ErrLocalCVReference):
		return KindValidation
	case errors.Is(err, ErrPermissionDenied):
		return KindPermission
	case errors.Is(err, ErrAuthExpired),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return KindAuth
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrCVGone),
		errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, ErrOffline),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return KindOffline
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindOffline
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return KindConflict
		case "23503", "23502", "23514":
			return KindValidation
		}
	}

	return KindUnknown
}
