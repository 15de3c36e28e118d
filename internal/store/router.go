package store

import (
	"context"
	"strings"
	"unicode"
)

// StatementKind tells the router which pool a statement needs.
type StatementKind int

const (
	// StatementRead never modifies data and may run on a replica.
	StatementRead StatementKind = iota
	// StatementWrite modifies data or schema and must run on the primary.
	StatementWrite
)

// String returns the kind name used in logs.
func (k StatementKind) String() string {
	if k == StatementWrite {
		return "write"
	}
	return "read"
}

// Router hands out the database handle a statement of the given kind must use.
type Router interface {
	Route(ctx context.Context, kind StatementKind) (DBTX, error)
}

type directRouter struct {
	db DBTX
}

// Direct returns a Router that sends every statement to db.
func Direct(db DBTX) Router {
	return directRouter{db: db}
}

func (r directRouter) Route(context.Context, StatementKind) (DBTX, error) {
	return r.db, nil
}

var readKeywords = map[string]bool{
	"SELECT":  true,
	"SHOW":    true,
	"VALUES":  true,
	"EXPLAIN": true,
	"TABLE":   true,
}

var modifyingKeywords = map[string]bool{
	"INSERT": true,
	"UPDATE": true,
	"DELETE": true,
	"MERGE":  true,
}

// Classify inspects the shape of query and reports whether it reads or writes.
//
// The leading keyword decides, after comments, whitespace and opening
// parentheses are skipped. SELECT and WITH statements count as writes when a
// data-modifying keyword or a locking clause (FOR UPDATE) appears outside
// quoted text. Anything unrecognized is a write.
func Classify(query string) StatementKind {
	words := keywords(query)
	if len(words) == 0 {
		return StatementWrite
	}

	first := words[0]
	if first != "WITH" && !readKeywords[first] {
		return StatementWrite
	}
	if first == "SHOW" || first == "EXPLAIN" {
		return StatementRead
	}

	for _, w := range words[1:] {
		if modifyingKeywords[w] {
			return StatementWrite
		}
	}
	return StatementRead
}

// keywords returns the upper-cased bare words of query, skipping comments,
// string literals and quoted identifiers.
func keywords(query string) []string {
	var (
		words []string
		word  strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strings.ToUpper(word.String()))
			word.Reset()
		}
	}

	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			flush()
			i += 2
			for i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/') {
				i++
			}
			i++
		case r == '\'' || r == '"':
			flush()
			i++
			for i < len(rs) && rs[i] != r {
				i++
			}
		case unicode.IsLetter(r) || r == '_' || (word.Len() > 0 && unicode.IsDigit(r)):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return words
}
