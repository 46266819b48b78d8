package helpers

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// ApplySearch adds a case-insensitive OR match of term across columns
func ApplySearch(q squirrel.SelectBuilder, term string, columns ...string) squirrel.SelectBuilder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}

	pattern := "%" + escapeLike(term) + "%"
	or := squirrel.Or{}
	for _, col := range columns {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return q.Where(or)
}

// ApplyPage applies LIMIT/OFFSET for a 1-based page
func ApplyPage(q squirrel.SelectBuilder, page, size int) squirrel.SelectBuilder {
	offset, limit := CalculateOffsetLimit(page, size)
	return q.Limit(limit).Offset(offset)
}

// CountOf turns a filtered select into a COUNT(*) query over the same FROM/WHERE
func CountOf(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.RemoveColumns().RemoveLimit().RemoveOffset().Columns("COUNT(*)")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
