package dialect

import (
	"fmt"
	"strconv"
)

// Postgres renders positional "$N" bind variables for drivers that do not
// understand named arguments (database/sql on top of pgx/stdlib).
type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string {
	return "postgres"
}

// BindVar is one-based on the wire.
func (Postgres) BindVar(ordinal int) string {
	return "$" + strconv.Itoa(ordinal+1)
}

func (Postgres) Named() bool {
	return false
}

func (Postgres) RenderValue(v any) string {
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("'\\x%x'::bytea", b)
	}
	return renderLiteral(v)
}
