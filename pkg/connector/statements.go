package connector

import (
	"regexp"
	"strings"

	"github.com/datusai/datus-clickhouse/pkg/utils"
)

const (
	stmtQuery stmtKind = iota
	stmtInsert
	stmtUpdate
	stmtDelete
	stmtDDL
)

type (
	stmtKind int

	// mutation is an UPDATE or DELETE split into its parts. Table is kept
	// exactly as written (it may already be quoted or qualified).
	mutation struct {
		Table string
		Set   string
		Where string
	}
)

var (
	updateHead      = regexp.MustCompile(`(?is)^\s*UPDATE\s+(\S+)\s+SET\s+`)
	alterUpdateHead = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(\S+)\s+UPDATE\s+`)
	deleteHead      = regexp.MustCompile(`(?is)^\s*DELETE\s+FROM\s+([^\s;]+)`)
	alterDeleteHead = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(\S+)\s+DELETE\s+`)
	leadingComment  = regexp.MustCompile(`(?s)^\s*(--[^\n]*\n|/\*.*?\*/)`)
)

// classifyStatement picks the execution path for a raw SQL statement from its
// leading keyword.
func classifyStatement(sql string) stmtKind {
	keyword := strings.ToUpper(firstKeyword(sql))
	switch keyword {
	case "SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "EXISTS", "VALUES":
		return stmtQuery
	case "INSERT":
		return stmtInsert
	case "UPDATE":
		return stmtUpdate
	case "DELETE":
		return stmtDelete
	case "ALTER":
		if alterUpdateHead.MatchString(sql) {
			return stmtUpdate
		}
		if alterDeleteHead.MatchString(sql) {
			return stmtDelete
		}
	}
	return stmtDDL
}

func firstKeyword(sql string) string {
	for {
		loc := leadingComment.FindStringIndex(sql)
		if loc == nil {
			break
		}
		sql = sql[loc[1]:]
	}

	sql = strings.TrimLeft(sql, " \t\r\n(")
	end := strings.IndexFunc(sql, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end < 0 {
		return sql
	}
	return sql[:end]
}

// parseUpdate splits UPDATE t SET .. [WHERE ..] and ALTER TABLE t UPDATE .. WHERE ..
func parseUpdate(sql string) (mutation, bool) {
	sql = trimStatement(sql)

	if loc := updateHead.FindStringSubmatchIndex(sql); loc != nil {
		set, where := splitWhere(sql[loc[1]:])
		if set == "" {
			return mutation{}, false
		}
		return mutation{Table: sql[loc[2]:loc[3]], Set: set, Where: where}, true
	}

	if loc := alterUpdateHead.FindStringSubmatchIndex(sql); loc != nil {
		set, where := splitWhere(sql[loc[1]:])
		if set == "" || where == "" {
			return mutation{}, false
		}
		return mutation{Table: sql[loc[2]:loc[3]], Set: set, Where: where}, true
	}

	return mutation{}, false
}

// parseDelete splits DELETE FROM t [WHERE ..] and ALTER TABLE t DELETE WHERE ..
func parseDelete(sql string) (mutation, bool) {
	sql = trimStatement(sql)

	if loc := deleteHead.FindStringSubmatchIndex(sql); loc != nil {
		rest, where := splitWhere(sql[loc[1]:])
		if rest != "" {
			return mutation{}, false
		}
		return mutation{Table: sql[loc[2]:loc[3]], Where: where}, true
	}

	if loc := alterDeleteHead.FindStringSubmatchIndex(sql); loc != nil {
		rest, where := splitWhere(sql[loc[1]:])
		if rest != "" || where == "" {
			return mutation{}, false
		}
		return mutation{Table: sql[loc[2]:loc[3]], Where: where}, true
	}

	return mutation{}, false
}

// valuesRows counts the row tuples of an INSERT ... VALUES statement. It
// returns 0 for any other statement, including INSERT ... SELECT.
func valuesRows(sql string) int {
	at := findKeyword(sql, "VALUES")
	if at < 0 {
		return 0
	}

	offset := at + len("VALUES")
	rows := 0
	topLevel(sql[offset:], func(i, depth int) bool {
		if depth == 0 && sql[offset+i] == '(' {
			rows++
		}
		return true
	})
	return rows
}

func trimStatement(sql string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
}

// splitWhere cuts s at its first top-level WHERE keyword.
func splitWhere(s string) (head, where string) {
	at := findKeyword(s, "WHERE")
	if at < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:at]), strings.TrimSpace(s[at+len("WHERE"):])
}

// findKeyword returns the offset of the first occurrence of keyword outside
// literals, quoted identifiers, comments and parentheses, or -1.
func findKeyword(sql, keyword string) int {
	found := -1
	topLevel(sql, func(i, depth int) bool {
		if depth == 0 && isKeywordAt(sql, i, keyword) {
			found = i
			return false
		}
		return true
	})
	return found
}

func isKeywordAt(sql string, i int, keyword string) bool {
	end := i + len(keyword)
	if end > len(sql) || !strings.EqualFold(sql[i:end], keyword) {
		return false
	}
	if i > 0 && isIdentByte(sql[i-1]) {
		return false
	}
	return end == len(sql) || !isIdentByte(sql[end])
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// topLevel calls fn with the offset and parenthesis depth of every byte of sql
// that is not part of a string literal, quoted identifier or comment. It
// stops early when fn returns false.
func topLevel(sql string, fn func(i, depth int) bool) {
	depth := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = closingQuote(sql, i)
			continue
		case strings.HasPrefix(sql[i:], "--"):
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				return
			}
			i += j
			continue
		case strings.HasPrefix(sql[i:], "/*"):
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				return
			}
			i += j + 3
			continue
		}

		if !fn(i, depth) {
			return
		}

		switch c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
}

// closingQuote returns the offset of the quote closing the one at start.
// Backslash escapes and doubled quotes stay inside the literal.
func closingQuote(sql string, start int) int {
	q := sql[start]
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			i++
		case q:
			if i+1 < len(sql) && sql[i+1] == q {
				i++
				continue
			}
			return i
		}
	}
	return len(sql)
}

// countSQL counts the rows a mutation will touch.
func (m mutation) countSQL() string {
	sql := "SELECT count() FROM " + m.Table
	if m.Where != "" {
		sql += " WHERE " + m.Where
	}
	return sql
}

// alterUpdateSQL renders the mutation as ALTER TABLE ... UPDATE.
func (m mutation) alterUpdateSQL() string {
	return utils.NewSQLBuilder().
		Alter("TABLE").
		Raw(m.Table).
		Raw("UPDATE " + m.Set).
		Where(m.Where).
		StringWithoutSemicolon()
}

// deleteSQL renders the mutation as a lightweight DELETE when supported and as
// ALTER TABLE ... DELETE otherwise.
func (m mutation) deleteSQL(lightweight bool) string {
	b := utils.NewSQLBuilder()
	if lightweight {
		b.Raw("DELETE FROM " + m.Table)
	} else {
		b.Alter("TABLE").Raw(m.Table).Delete()
	}
	return b.Where(m.Where).StringWithoutSemicolon()
}

// summarize shortens a statement for error messages and logs.
func summarize(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if r := []rune(s); len(r) > 80 {
		s = string(r[:77]) + "..."
	}
	return s
}
