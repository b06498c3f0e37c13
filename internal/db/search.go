package db

import "strings"

// TextQuery is the input for a paginated FT.SEARCH.
type TextQuery struct {
	IndexName    string
	Query        string // full query string including filter predicates
	WithScores   bool
	SortBy       string // empty = engine relevance order
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation. Total is the exact match
// count regardless of the requested page window.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// AggregateQuery is the input for an FT.AGGREGATE GROUPBY count query.
type AggregateQuery struct {
	IndexName string
	Query     string
	GroupBy   string // field name without the @ prefix
	Limit     int    // max groups returned, 0 = default
}

// AggregateRow is one group from an aggregation: a field value and its count.
type AggregateRow struct {
	Value string
	Count int
}

// EscapeTag escapes a value for use inside an FT.SEARCH tag filter {...}.
func EscapeTag(value string) string {
	return tagEscaper.Replace(value)
}

// EscapeText escapes free text for use inside an FT.SEARCH text clause.
func EscapeText(value string) string {
	return textEscaper.Replace(value)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
