package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// pluralizeClient is a singleton instance for consistent pluralization behavior.
var pluralizeClient = pluralizer.NewClient()

// NamingStrategy derives table and column names for types and fields that
// do not name them explicitly.
type NamingStrategy interface {
	// ColumnName converts a Go field name to a database column name.
	ColumnName(fieldName string) string
	// TableName converts a Go struct name to a database table name.
	TableName(structName string) string
}

// ColumnNamingType represents different column naming conventions.
type ColumnNamingType int

const (
	ColumnAsIs       ColumnNamingType = iota // UserID, FirstName
	ColumnSnakeCase                          // user_id, first_name
	ColumnUpperSnake                         // USER_ID, FIRST_NAME
)

// TableNamingType represents different table naming conventions.
type TableNamingType int

const (
	TableAsIs            TableNamingType = iota // BlogPost
	TableSnakeCase                              // blog_post
	TableSnakeCasePlural                        // blog_posts
	TableUpperSnake                             // BLOG_POST
)

type namingStrategy struct {
	column ColumnNamingType
	table  TableNamingType
}

// NewNamingStrategy combines a column and a table convention.
func NewNamingStrategy(column ColumnNamingType, table TableNamingType) NamingStrategy {
	return &namingStrategy{column: column, table: table}
}

// AsIsStrategy uses Go names unchanged. It is the default: an unannotated
// type maps to a table of the same name and each field to a column of the
// same name.
func AsIsStrategy() NamingStrategy {
	return NewNamingStrategy(ColumnAsIs, TableAsIs)
}

// SnakeCaseStrategy returns snake_case columns and plural snake_case tables.
func SnakeCaseStrategy() NamingStrategy {
	return NewNamingStrategy(ColumnSnakeCase, TableSnakeCasePlural)
}

func (n *namingStrategy) ColumnName(fieldName string) string {
	switch n.column {
	case ColumnSnakeCase:
		return toSnakeCase(fieldName)
	case ColumnUpperSnake:
		return strings.ToUpper(toSnakeCase(fieldName))
	default:
		return fieldName
	}
}

func (n *namingStrategy) TableName(structName string) string {
	switch n.table {
	case TableSnakeCase:
		return toSnakeCase(structName)
	case TableSnakeCasePlural:
		return pluralize(toSnakeCase(structName))
	case TableUpperSnake:
		return strings.ToUpper(toSnakeCase(structName))
	default:
		return structName
	}
}

// toSnakeCase converts any naming convention to snake_case.
// Handles acronyms and digits: UserID -> user_id, HTTPServer -> http_server.
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	// If already snake_case (contains underscores and no uppercase), return as-is
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	var result strings.Builder
	result.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}

// pluralize converts singular nouns to their plural forms.
func pluralize(name string) string {
	if name == "" {
		return ""
	}
	// Only the last word of a snake_case name is inflected.
	if i := strings.LastIndexByte(name, '_'); i >= 0 && i < len(name)-1 {
		return name[:i+1] + pluralize(name[i+1:])
	}
	return preserveCase(name, pluralizeClient.Plural(name))
}

// hasUpperCase returns true if the string contains any uppercase letters.
func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// preserveCase preserves the case pattern of the original string in the result.
func preserveCase(original, result string) string {
	if original == "" || result == "" {
		return result
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(result)
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(result)
	}
	return result
}
