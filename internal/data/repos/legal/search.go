package legal

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lower-cases and escapes q for a "contains" match.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

const likeEscape = ` ESCAPE '\'`

// whereContains ORs a case-insensitive substring match of q over cols.
// Postgres uses ILIKE; SQLite connections opened through data/db carry a
// Unicode lower(), so LOWER(col) LIKE folds Cyrillic too.
func whereContains(tx *gorm.DB, q string, cols ...string) *gorm.DB {
	pat := likePattern(q)
	op := "LOWER(%s) LIKE ?"
	if tx.Dialector.Name() == "postgres" {
		op = "%s ILIKE ?"
	}
	clauses := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		clauses = append(clauses, strings.Replace(op, "%s", col, 1)+likeEscape)
		args = append(args, pat)
	}
	return tx.Where(strings.Join(clauses, " OR "), args...)
}
