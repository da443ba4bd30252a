// Package errors turns errors into low-cardinality tags for metrics and logs.
package errors

import (
	"context"
	goerrors "errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/target/realty-admin/internal/errors"
)

// Classify returns a short class name for err, or "" for nil. Application
// errors use their code; well-known infrastructure failures get a fixed name
// and everything else is "other".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	var (
		pgErr  *pgconn.PgError
		netErr net.Error
	)
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return string(apperrors.ErrCodeTimeout)
	case goerrors.Is(err, context.Canceled):
		return string(apperrors.ErrCodeCanceled)
	case goerrors.Is(err, redis.Nil):
		return "cache_miss"
	case goerrors.As(err, &pgErr):
		return "postgres_" + pgErr.Code
	case goerrors.As(err, &netErr):
		if netErr.Timeout() {
			return "net_timeout"
		}
		return "net"
	default:
		return "other"
	}
}
