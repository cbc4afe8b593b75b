package repositories

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// The unique constraints back up the in-transaction existence checks when
// two requests race past them. Tests run on SQLite, so the driver-agnostic
// message check is needed alongside the pq error code.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns a comma-separated placeholder list ($3, $4, ...)
// starting at the given ordinal, for building IN clauses.
func placeholders(start, count int) string {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
