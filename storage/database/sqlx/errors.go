package sqlxrepos

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
)

const foreignKeyViolation = "23503"

// trapNoRowsErr maps a "no rows" error to notFound, wraps any other.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return pkgerrors.Wrap(err, msg)
}

// pgCode extracts the SQLSTATE of an error raised by either driver.
func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
