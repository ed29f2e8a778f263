// Package search builds case-insensitive substring filters over several
// columns.
package search

import (
	"strings"

	"gorm.io/gorm"
)

// "!" is the escape character; a backslash is not portable to MySQL literals.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// Pattern returns a lower-cased LIKE pattern with wildcards in q escaped.
func Pattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

// Contains ORs a substring match of q over columns onto stmt. Column names
// must be trusted identifiers.
func Contains(stmt *gorm.DB, q string, columns ...string) *gorm.DB {
	if len(columns) == 0 {
		return stmt
	}
	pattern := Pattern(q)
	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		clauses = append(clauses, "LOWER("+col+`) LIKE ? ESCAPE '!'`)
		args = append(args, pattern)
	}
	return stmt.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
