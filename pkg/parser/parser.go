package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// typeLexer tokenizes ClickHouse type expressions as reported by
	// system.columns and the driver's column metadata.
	typeLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `'([^'\\]|\\.)*'`},
		{Name: "BacktickIdent", Pattern: "`([^`\\\\]|\\\\.)*`"},
		{Name: "Number", Pattern: `-?\d+(\.\d*)?`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[(),=]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	typeParser = participle.MustBuild[DataType](
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
)

// ParseType parses a single ClickHouse data type expression.
//
// Example:
//
//	dt, err := parser.ParseType("Nullable(DateTime64(3, 'UTC'))")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(dt.IsNullable(), dt.BaseName()) // true DateTime64
func ParseType(typ string) (*DataType, error) {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return nil, errors.New("empty data type")
	}

	dt, err := typeParser.ParseString("", typ)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse data type %q", typ)
	}

	return dt, nil
}

// IsNullableType reports whether typ is nullable. Unparseable types are
// treated as nullable.
func IsNullableType(typ string) bool {
	dt, err := ParseType(typ)
	if err != nil {
		return true
	}
	return dt.IsNullable()
}
