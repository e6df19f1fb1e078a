package dialect

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParamPrefix is prepended to the zero-based ordinal of every generated
// parameter name.
const ParamPrefix = "__param_"

// Dialect renders bind variables for a particular driver family.
type Dialect interface {
	// Name identifies the dialect ("named", "postgres", "mysql", ...).
	Name() string
	// BindVar returns the token that replaces the marker with the given
	// zero-based ordinal.
	BindVar(ordinal int) string
	// Named reports whether arguments must be passed as sql.NamedArg.
	Named() bool
	// RenderValue renders v as a SQL literal. Only used for logging.
	RenderValue(v any) string
}

// ParamName returns the parameter name for a zero-based ordinal.
func ParamName(ordinal int) string {
	return ParamPrefix + strconv.Itoa(ordinal)
}

// Default is the dialect used when none is configured.
func Default() Dialect {
	return NewNamedDialect()
}

// ByName resolves a dialect from its name. Unknown names return false.
func ByName(name string) (Dialect, bool) {
	switch strings.ToLower(name) {
	case "", "named", "sqlserver", "mssql", "sqlite", "sqlite3":
		return NewNamedDialect(), true
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), true
	case "mysql":
		return NewMySQLDialect(), true
	case "tidb":
		return NewTiDBDialect(), true
	}
	return nil, false
}

func renderLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64)
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000000") + "'"
	case []byte:
		return fmt.Sprintf("X'%x'", val)
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}
