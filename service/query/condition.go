package query

import "strings"

// Operator represents a condition operator
type Operator string

const (
	Equal    Operator = "="
	NotEqual Operator = "!="
	Like     Operator = "LIKE"
	NotLike  Operator = "NOT LIKE"
	In       Operator = "IN"
)

// Condition is a bound predicate on a single column
type Condition struct {
	Column   Column
	Operator Operator
	Values   []string
	arity    int
}

// Match evaluates the condition against a row
func (c *Condition) Match(row Row) bool {
	value, ok := row[c.Column]
	if !ok {
		return false
	}
	switch c.Operator {
	case Equal:
		return len(c.Values) == 1 && value == c.Values[0]
	case NotEqual:
		return len(c.Values) == 1 && value != c.Values[0]
	case Like:
		return len(c.Values) == 1 && MatchLike(c.Values[0], value)
	case NotLike:
		return len(c.Values) == 1 && !MatchLike(c.Values[0], value)
	case In:
		for _, candidate := range c.Values {
			if candidate == value {
				return true
			}
		}
	}
	return false
}

// String renders the condition with quoted literals
func (c *Condition) String() string {
	builder := strings.Builder{}
	builder.WriteString(string(c.Column))
	builder.WriteString(" ")
	builder.WriteString(string(c.Operator))
	builder.WriteString(" ")
	if c.Operator == In {
		builder.WriteString("(")
		for i, value := range c.Values {
			if i > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(Quote(value))
		}
		builder.WriteString(")")
		return builder.String()
	}
	if len(c.Values) > 0 {
		builder.WriteString(Quote(c.Values[0]))
	}
	return builder.String()
}

// Quote returns a single quoted literal with embedded quotes doubled
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// EscapeLike escapes LIKE wildcards so that value matches literally
func EscapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// MatchLike evaluates a LIKE pattern where % matches any run, _ a single
// character and backslash escapes the next character.
func MatchLike(pattern, value string) bool {
	p := []rune(pattern)
	v := []rune(value)
	pi, vi := 0, 0
	starP, starV := -1, 0
	for vi < len(v) {
		if pi < len(p) {
			switch p[pi] {
			case '%':
				starP, starV = pi, vi
				pi++
				continue
			case '_':
				pi++
				vi++
				continue
			case '\\':
				if pi+1 < len(p) && p[pi+1] == v[vi] {
					pi += 2
					vi++
					continue
				}
			default:
				if p[pi] == v[vi] {
					pi++
					vi++
					continue
				}
			}
		}
		if starP < 0 {
			return false
		}
		starV++
		pi, vi = starP+1, starV
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
