// Package query turns SQL templates with positional '?' markers into
// commands with uniquely named parameters, and synthesizes INSERT and
// UPDATE statements from ordered column maps.
//
//	cmd, err := query.New("SELECT * FROM t WHERE id=? OR name=?", 1, "A").Build()
//	// cmd.Text == "SELECT * FROM t WHERE id=@__param_0 OR name=@__param_1"
//
// Builders are values: every method returns a modified copy, so a partially
// configured builder may be shared between goroutines.
package query

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Konsultn-Engineering/objquery/dialect"
)

// Marker is the positional parameter marker. It has no escape form.
const Marker = '?'

// ErrParamCount is returned when the number of markers in a template does
// not match the number of parameters supplied for it.
var ErrParamCount = errors.New("query: marker and parameter counts differ")

// Builder binds an ordered parameter list to a statement template.
type Builder struct {
	template string
	params   []any
	dialect  dialect.Dialect
}

// New returns a builder for template with params appended as by Add.
func New(template string, params ...any) Builder {
	return Builder{template: template}.Add(params...)
}

// Add returns a copy of b with params appended. A parameter that is itself
// a slice or array is flattened one level; []byte and driver.Valuer values
// are kept whole.
func (b Builder) Add(params ...any) Builder {
	out := make([]any, len(b.params), len(b.params)+len(params))
	copy(out, b.params)
	for _, p := range params {
		out = appendFlat(out, p)
	}
	b.params = out
	return b
}

// WithDialect returns a copy of b that renders bind variables for d.
func (b Builder) WithDialect(d dialect.Dialect) Builder {
	b.dialect = d
	return b
}

// Template returns the unmodified template.
func (b Builder) Template() string { return b.template }

// Params returns a copy of the bound parameters.
func (b Builder) Params() []any {
	return append([]any(nil), b.params...)
}

// Build rewrites the template and binds the parameters. It fails with
// ErrParamCount unless there is exactly one parameter per marker.
func (b Builder) Build() (*Command, error) {
	d := b.dialect
	if d == nil {
		d = dialect.Default()
	}

	text, markers := Rewrite(b.template, d)
	if markers != len(b.params) {
		return nil, fmt.Errorf("%w: %d markers, %d parameters", ErrParamCount, markers, len(b.params))
	}

	cmd := &Command{
		Text:     text,
		Params:   make([]Param, len(b.params)),
		template: b.template,
		dialect:  d,
	}
	for i, v := range b.params {
		cmd.Params[i] = Param{Name: dialect.ParamName(i), Value: v}
	}
	return cmd, nil
}

// Rewrite replaces every marker in template, left to right, with the bind
// variable for its zero-based ordinal and reports how many were replaced.
func Rewrite(template string, d dialect.Dialect) (string, int) {
	var sb strings.Builder
	sb.Grow(len(template) + 8*strings.Count(template, string(Marker)))

	ordinal := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != Marker {
			sb.WriteByte(c)
			continue
		}
		sb.WriteString(d.BindVar(ordinal))
		ordinal++
	}
	return sb.String(), ordinal
}

// CountMarkers reports how many markers template contains.
func CountMarkers(template string) int {
	return strings.Count(template, string(Marker))
}

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

func appendFlat(dst []any, p any) []any {
	if p == nil {
		return append(dst, nil)
	}
	rv := reflect.ValueOf(p)
	if !isCollection(rv.Type()) {
		return append(dst, p)
	}
	for i := 0; i < rv.Len(); i++ {
		dst = append(dst, rv.Index(i).Interface())
	}
	return dst
}

func isCollection(t reflect.Type) bool {
	if t.Implements(valuerType) {
		return false
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() != reflect.Uint8
	}
	return false
}
