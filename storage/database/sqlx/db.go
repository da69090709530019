// Package sqlxrepos implements the core repositories on PostgreSQL
// with sqlx and squirrel.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// uniqueViolation reports whether err is a psql unique_violation on the
// given constraint.
func uniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}
