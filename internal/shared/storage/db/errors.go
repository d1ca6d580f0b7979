package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation           = "23505"
	codeInvalidTextRepresentation = "22P02"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsInvalidID reports whether Postgres rejected a key that does not parse as
// its column type, e.g. "abc" for a UUID column. Repos treat it as a miss.
func IsInvalidID(err error) bool {
	return hasCode(err, codeInvalidTextRepresentation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
